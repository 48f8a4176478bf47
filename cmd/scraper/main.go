package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proxyz/internal/shared/config"
	"proxyz/internal/shared/logger"
	"proxyz/proxypool/model"
	"proxyz/proxypool/scraper"
	"proxyz/proxypool/storage"
)

func main() {
	configPath := flag.String("config", "proxyz.ini", "Path to optional ini config file")
	protocolFlag := flag.String("p", "", "Proxy type to harvest: http, https, socks, socks4 or socks5 (required)")
	output := flag.String("o", "", "Output file for the harvested candidate list")
	verbose := flag.Bool("v", false, "Enable verbose output (per-source statistics, debug logging)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Use standard fmt before the logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: failed to load config file '%s': %v\n", *configPath, err)
		os.Exit(1)
	}

	level := cfg.LogConf.Level
	if *verbose {
		level = "debug"
	}
	logger.Init(level)

	if *protocolFlag == "" {
		logger.Error().Msg("Missing required -p flag (http, https, socks, socks4 or socks5).")
		os.Exit(1)
	}
	selector, err := model.ParseProtocol(*protocolFlag)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid protocol selector.")
		os.Exit(1)
	}

	outPath := *output
	if outPath == "" {
		outPath = cfg.ScraperConf.Output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sourceTimeout := time.Duration(cfg.ScraperConf.SourceTimeoutSeconds) * time.Second
	coordinator := scraper.NewCoordinator(scraper.DefaultRegistry(sourceTimeout), cfg.ScraperConf.MaxIdleConns)
	candidates, stats, err := coordinator.Harvest(ctx, selector)
	if err != nil {
		if errors.Is(err, scraper.ErrNoSources) {
			logger.Error().Err(err).Msg("Nothing to harvest.")
		} else {
			logger.Error().Err(err).Msg("Harvest failed.")
		}
		os.Exit(1)
	}

	if *verbose {
		for name, st := range stats {
			logger.Info().
				Str("source", name).
				Int("accepted", st.Accepted).
				Int("rejected_bad", st.RejectedInfrastructure).
				Int("rejected_invalid", st.RejectedMalformed).
				Int("total", st.Total).
				Msg("Source statistics")
		}
	}

	tokens := make([]string, 0, len(candidates))
	for _, c := range candidates {
		tokens = append(tokens, c.HostPort())
	}
	if err := storage.NewListFile(outPath).Save(tokens); err != nil {
		logger.Error().Err(err).Str("path", outPath).Msg("Failed to write candidate list.")
		os.Exit(1)
	}

	logger.Info().Int("unique", len(tokens)).Str("path", outPath).Msg("Candidate list written.")
}
