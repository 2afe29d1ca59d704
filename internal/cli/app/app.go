// Package app contains the wirescope command line entry point.
package app

import (
	"os"

	"github.com/wirescope/wirescope/internal/cli/root"
	"github.com/wirescope/wirescope/internal/version"
)

// Run the app. This is the main app entry point
func Run() error {
	root.Cmd.Version(version.Version)
	_, err := root.Cmd.Parse(os.Args[1:])
	return err
}
