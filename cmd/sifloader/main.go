package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/netpublish/sifloader/pkg/fetch"
	"github.com/netpublish/sifloader/pkg/loader"
	"github.com/netpublish/sifloader/pkg/logging"
	"github.com/netpublish/sifloader/pkg/metrics"
	"github.com/netpublish/sifloader/pkg/publish"
	"github.com/netpublish/sifloader/pkg/symbol"
)

func main() {
	configPath := flag.String("config", "", "Path to run configuration (YAML)")
	dryRun := flag.Bool("dry-run", false, "Load into an in-memory repository instead of the server")
	noResolve := flag.Bool("no-resolve", false, "Skip the external gene symbol service")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: sifloader --config config.yaml [--dry-run] [--no-resolve] [--verbose]")
		os.Exit(2)
	}

	log := logging.NewDefaultLogger()
	if *verbose {
		log.SetLevel(logging.DebugLevel)
	}

	cfg, err := loader.LoadConfig(*configPath)
	if err != nil {
		log.Error("invalid configuration", logging.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Fetch != nil {
		client, err := fetch.NewClient(ctx, *cfg.Fetch)
		if err != nil {
			log.Error("fetch setup failed", logging.Error(err))
			os.Exit(1)
		}
		f := fetch.NewFetcher(client, cfg.Fetch.Bucket, cfg.Fetch.Prefix, cfg.SIFDir, log)
		if _, err := f.Fetch(ctx); err != nil {
			log.Error("fetch failed", logging.Error(err))
			os.Exit(1)
		}
	}

	var repo publish.Repository
	if *dryRun || cfg.Server == "" {
		log.Info("dry run: publishing to in-memory repository")
		repo = publish.NewInMemoryRepository()
	} else {
		repo = publish.NewHTTPRepository(cfg.Server, cfg.Username, cfg.Password)
	}

	var service symbol.Service
	if !*noResolve {
		service = symbol.NewHTTPService(cfg.ResolverURL, "")
	}

	l, err := loader.New(cfg, repo, service, log, metrics.Default())
	if err != nil {
		log.Error("loader setup failed", logging.Error(err))
		os.Exit(1)
	}

	report, err := l.Run(ctx)
	if err != nil {
		log.Error("run failed", logging.Error(err))
		os.Exit(1)
	}

	fmt.Print(report.String())
	for _, res := range report.Results() {
		if res.Issues != nil && res.Issues.Count() > 0 {
			fmt.Print(res.Issues.String())
		}
	}

	if !report.OK() {
		os.Exit(1)
	}
}
