package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proxyz/internal/shared/config"
	"proxyz/internal/shared/logger"
	"proxyz/internal/shared/useragent"
	"proxyz/proxypool/checker"
	"proxyz/proxypool/filter"
	"proxyz/proxypool/geo"
	"proxyz/proxypool/model"
	"proxyz/proxypool/scraper"
	"proxyz/proxypool/storage"
)

// Exit statuses: success, user-initiated cancellation, everything else.
const (
	exitOK        = 0
	exitFailure   = 1
	exitCancelled = 130
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], nil))
}

// run is main's testable body: it parses args, drives one validation run
// against the given base context and returns the process exit code. A nil
// probe means the real network probe.
func run(baseCtx context.Context, args []string, probe checker.ProbeFunc) int {
	fs := flag.NewFlagSet("checker", flag.ContinueOnError)
	configPath := fs.String("config", "proxyz.ini", "Path to optional ini config file")
	listPath := fs.String("l", "", "Path to the candidate list file")
	protocolFlag := fs.String("p", "http", "Proxy type to check: http, https, socks4 or socks5")
	timeoutSec := fs.Int("t", 0, "Per-probe timeout in seconds")
	site := fs.String("s", "", "Target endpoint; a bare host is coerced to https://")
	concurrency := fs.Int("c", 0, "Maximum concurrent probes")
	limit := fs.Int("limit", 0, "Cap on the number of candidates to check (0 = all)")
	randomAgent := fs.Bool("r", false, "Pick a fresh random user agent for every probe")
	verbose := fs.Bool("v", false, "Enable verbose output (per-probe results, debug logging)")
	geoLookup := fs.Bool("geo", false, "Annotate surviving relays with location data after the run")
	showSources := fs.Bool("sources", false, "Report which public lists still publish each surviving relay")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: failed to load config file '%s': %v\n", *configPath, err)
		return exitFailure
	}

	level := cfg.LogConf.Level
	if *verbose {
		level = "debug"
	}
	logger.Init(level)

	// Merge flag and ini values; flags win when set.
	if *listPath == "" {
		*listPath = cfg.CheckerConf.List
	}
	if *site == "" {
		*site = cfg.CheckerConf.Target
	}
	if *timeoutSec == 0 {
		*timeoutSec = cfg.CheckerConf.TimeoutSeconds
	}
	if *concurrency == 0 {
		*concurrency = cfg.CheckerConf.Concurrency
	}

	protocol, err := model.ParseProtocol(*protocolFlag)
	if err != nil || protocol == model.ProtocolSOCKS {
		logger.Error().Str("protocol", *protocolFlag).Msg("Checking needs a concrete protocol: http, https, socks4 or socks5.")
		return exitFailure
	}
	if *timeoutSec <= 0 || *concurrency <= 0 {
		logger.Error().Msg("Timeout and concurrency must be positive.")
		return exitFailure
	}

	target := checker.NormalizeTarget(*site)

	candidates, skipped, err := loadCandidates(*listPath, protocol, *limit)
	if err != nil {
		logger.Error().Err(err).Str("path", *listPath).Msg("Cannot read candidate list. Run the scraper first to generate one.")
		return exitFailure
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("Skipped invalid candidate entries.")
	}
	if len(candidates) == 0 {
		logger.Error().Str("path", *listPath).Msg("No valid candidates found to check.")
		return exitFailure
	}

	agents := useragent.NewPool()
	if err := agents.LoadFile(cfg.CheckerConf.UserAgentsFile); err != nil {
		logger.Warn().Err(err).Msg("Failed to load extra user agents; using the builtin set.")
	}

	ctx, stop := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator := checker.NewCoordinator(probe, agents)
	surviving, summary := coordinator.Run(ctx, candidates, checker.Options{
		Target:        target,
		Timeout:       time.Duration(*timeoutSec) * time.Second,
		Concurrency:   *concurrency,
		RandomAgent:   *randomAgent,
		ProgressEvery: cfg.CheckerConf.ProgressEvery,
	})

	// The surviving set overwrites the input list: dead candidates are
	// dropped, on cancellation as well as on normal completion.
	tokens := make([]string, 0, len(surviving))
	for _, c := range surviving {
		tokens = append(tokens, c.HostPort())
	}
	if err := storage.NewListFile(*listPath).Save(tokens); err != nil {
		logger.Error().Err(err).Str("path", *listPath).Msg("Failed to persist surviving relays.")
		return exitFailure
	}

	if summary.Cancelled {
		logger.Warn().
			Int("checked", summary.Checked).
			Int("total", summary.Total).
			Int("saved", summary.Surviving).
			Str("path", *listPath).
			Msg("Check cancelled by user; partial results saved.")
		return exitCancelled
	}

	logger.Info().
		Int("checked", summary.Checked).
		Int("surviving", summary.Surviving).
		Str("success_rate", fmt.Sprintf("%.1f%%", summary.SuccessRate())).
		Dur("elapsed", summary.Elapsed).
		Dur("avg_per_candidate", summary.AvgPerCandidate()).
		Msg("Check completed.")

	if summary.Surviving == 0 {
		logger.Warn().Msg("No working relays found. Consider raising -t, trying a different -s target, or harvesting a fresh list.")
		return exitOK
	}

	if *geoLookup {
		geo.NewResolver().Annotate(ctx, surviving)
	}
	if *showSources {
		sourceTimeout := time.Duration(cfg.ScraperConf.SourceTimeoutSeconds) * time.Second
		found := geo.MapSources(ctx, scraper.DefaultRegistry(sourceTimeout), surviving)
		for name, hits := range found {
			logger.Info().Str("source", name).Strs("relays", hits).Msg("Source still publishes surviving relays.")
		}
	}
	return exitOK
}

// loadCandidates reads and classifies the list file, keeping only tokens
// the filter accepts and applying the optional cap.
func loadCandidates(path string, protocol model.Protocol, limit int) ([]model.Candidate, int, error) {
	tokens, err := storage.NewListFile(path).Load()
	if err != nil {
		return nil, 0, err
	}

	var candidates []model.Candidate
	skipped := 0
	for _, token := range tokens {
		if limit > 0 && len(candidates) >= limit {
			break
		}
		cand, verdict := filter.ClassifyToken(token, protocol)
		if verdict != filter.Accept {
			skipped++
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates, skipped, nil
}
