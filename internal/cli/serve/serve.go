// Package serve implements the serve subcommand.
package serve

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wirescope/wirescope/internal/cli/root"
	"github.com/wirescope/wirescope/internal/config"
	"github.com/wirescope/wirescope/internal/server"
	"github.com/wirescope/wirescope/internal/static"
)

func init() {
	cmd := root.Command("serve", "Run the API server.")
	host := cmd.Flag("host", "Address where to listen (env: HOST)").String()
	port := cmd.Flag("port", "Port where to listen (env: PORT)").Short('p').Uint16()
	frontend := cmd.Flag("frontend", "Directory containing the web UI (env: FRONTEND_PATH)").String()
	disableProxy := cmd.Flag("disable-proxy", "Disable request execution (env: PROXY_DISABLED)").Bool()
	dnsServer := cmd.Flag("dns-server", "Use this ip:port DNS server (env: DNS_SERVER)").String()
	kvBackend := cmd.Flag("kvstore", "Key/value store backend (env: KVSTORE)").Enum("sqlite", "fs", "memory")
	kvPath := cmd.Flag("kvstore-path", "Key/value store directory (env: KVSTORE_PATH)").String()
	prometheus := cmd.Flag("prometheus", "Serve prometheus metrics at this endpoint (env: PROMETHEUS)").String()

	cmd.Action(func(_ *kingpin.ParseContext) error {
		cfg, err := root.Init()
		if err != nil {
			log.WithError(err).Error("cannot load the configuration")
			return err
		}
		overrideString(&cfg.Host, *host)
		overrideString(&cfg.FrontendPath, *frontend)
		overrideString(&cfg.DNSServer, *dnsServer)
		overrideString(&cfg.KVStore, *kvBackend)
		overrideString(&cfg.KVStorePath, *kvPath)
		overrideString(&cfg.PrometheusAddr, *prometheus)
		if *port != 0 {
			cfg.Port = *port
		}
		cfg.ProxyDisabled = cfg.ProxyDisabled || *disableProxy
		if err := cfg.Validate(); err != nil {
			log.WithError(err).Error("invalid configuration")
			return err
		}
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		return run(cfg, sigs, nil)
	})
}

// overrideString sets *dst to value when value is not empty.
func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// run serves the API until we receive a signal. When srvAddr is not
// nil, we send it the address of the API server once we're listening.
func run(cfg *config.Config, sigs <-chan os.Signal, srvAddr chan<- string) error {
	store, err := root.OpenStore(cfg)
	if err != nil {
		log.WithError(err).Error("cannot open the key/value store")
		return err
	}
	defer store.Close()

	opts := &server.Options{
		Executor:       root.NewExecutor(cfg, log.Log),
		Logger:         log.Log,
		ProxyDisabled:  cfg.ProxyDisabled,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Store:          store,
	}
	if cfg.FrontendPath != "" {
		log.Infof("serving the web UI from %s", cfg.FrontendPath)
		opts.Static = static.NewHandler(cfg.FrontendPath, log.Log)
	}
	if cfg.ProxyDisabled {
		log.Warn("request execution is disabled")
	}

	// create a listening server for serving API requests
	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           server.NewHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	listener, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		log.WithError(err).Error("cannot listen")
		return err
	}
	log.Infof("serving API requests at http://%s/", listener.Addr().String())
	if srvAddr != nil {
		srvAddr <- listener.Addr().String()
	}
	go srv.Serve(listener)

	servers := []*http.Server{srv}

	// optionally create another server for serving prometheus metrics
	if cfg.PrometheusAddr != "" {
		promMux := http.NewServeMux()
		promMux.Handle("/metrics", promhttp.Handler())
		promSrv := &http.Server{Addr: cfg.PrometheusAddr, Handler: promMux}
		go promSrv.ListenAndServe()
		log.Infof("serving prometheus metrics at http://%s/metrics", cfg.PrometheusAddr)
		servers = append(servers, promSrv)
	}

	// await for a signal
	sig := <-sigs
	log.Infof("interrupted by signal: %v", sig)

	// shutdown the servers awaiting for connections being
	// served to terminate before exiting gracefully.
	log.Infof("waiting for pending requests to complete")
	shutdownWg := &sync.WaitGroup{}
	for _, s := range servers {
		shutdownWg.Add(1)
		go shutdown(s, shutdownWg)
	}
	shutdownWg.Wait()
	return nil
}

// shutdown calls srv.Shutdown with a reasonably long timeout. The srv.Shutdown
// function will immediately close any open listener and then will wait until
// all pending connections are closed or the context has expired. This function
// will decrement the given wait group counter when it is done running.
func shutdown(srv *http.Server, wg *sync.WaitGroup) {
	defer wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
