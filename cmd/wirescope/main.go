// Command wirescope executes HTTP/HTTPS requests and reports the
// timing, TLS and size details of each phase.
package main

import (
	"github.com/apex/log"

	// commands
	_ "github.com/wirescope/wirescope/internal/cli/fetch"
	_ "github.com/wirescope/wirescope/internal/cli/kv"
	_ "github.com/wirescope/wirescope/internal/cli/serve"
	_ "github.com/wirescope/wirescope/internal/cli/version"

	"github.com/wirescope/wirescope/internal/cli/app"
)

func main() {
	err := app.Run()
	if err == nil {
		return
	}
	log.WithError(err).Fatal("main exit")
}
