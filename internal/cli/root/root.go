// Package root contains the root wirescope command and the
// helpers shared by its subcommands.
package root

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/wirescope/wirescope/internal/config"
	"github.com/wirescope/wirescope/internal/kvstore"
	"github.com/wirescope/wirescope/internal/log/handlers/cli"
	"github.com/wirescope/wirescope/internal/model"
	"github.com/wirescope/wirescope/internal/netxlite"
	"github.com/wirescope/wirescope/internal/proxy"
	"github.com/wirescope/wirescope/internal/version"
)

// Cmd is the root command
var Cmd = kingpin.New("wirescope", "Diagnostic HTTP/HTTPS request executor.")

// Command is syntax sugar for defining sub-commands
var Command = Cmd.Command

// Init should be called by all subcommands that need the configuration.
var Init func() (*config.Config, error)

// logmap maps the debug setting to the log level.
var logmap = map[bool]log.Level{
	true:  log.DebugLevel,
	false: log.InfoLevel,
}

func init() {
	envFile := Cmd.Flag("env-file", "Load environment variables from this file instead of ./.env").String()
	verbose := Cmd.Flag("debug", "Enable verbose log output.").Short('v').Bool()

	Cmd.PreAction(func(ctx *kingpin.ParseContext) error {
		log.SetHandler(cli.Default)
		log.SetLevel(logmap[*verbose])
		if *verbose {
			log.Debugf("wirescope version %s", version.Version)
		}

		Init = func() (*config.Config, error) {
			var envfiles []string
			if *envFile != "" {
				log.Debugf("Reading environment from %s", *envFile)
				envfiles = append(envfiles, *envFile)
			}
			cfg, err := config.Load(envfiles...)
			if err != nil {
				return nil, err
			}
			cfg.Debug = cfg.Debug || *verbose
			log.SetLevel(logmap[cfg.Debug])
			return cfg, nil
		}

		return nil
	})
}

// NewExecutor creates the executor described by the given configuration.
func NewExecutor(cfg *config.Config, logger model.Logger) *proxy.Executor {
	executor := proxy.NewExecutor(logger)
	if cfg.DNSServer != "" {
		log.Debugf("Using the DNS server at %s", cfg.DNSServer)
		executor.Resolver = netxlite.NewParallelResolverUDP(
			logger, netxlite.NewDialerWithoutResolver(logger), cfg.DNSServer)
	}
	return executor
}

// OpenStore opens the key/value store described by the given configuration.
func OpenStore(cfg *config.Config) (kvstore.Store, error) {
	log.Debugf("Opening the %s store at %s", cfg.KVStore, cfg.KVStorePath)
	return kvstore.Open(cfg.KVStore, cfg.KVStorePath)
}
