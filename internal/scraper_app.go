package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/jsamit27/ava/internal/adapters/auctioncsv"
	"github.com/jsamit27/ava/internal/adapters/manheimfetcher"
	"github.com/jsamit27/ava/internal/configs"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/jsamit27/ava/internal/core/usecase"
)

// ScraperOptions параметры запуска скрапера из флагов
type ScraperOptions struct {
	OutDir  string
	BaseURL string
	Delay   time.Duration
}

// ScraperApp собирает площадки Manheim и раскладывает их по штатам
type ScraperApp struct {
	scrape  *usecase.ScrapeAuctionLocationsUseCase
	outDir  string
	loggers *loggers
	logger  port.LoggerPort
	out     io.Writer
}

func NewScraperApp(opts ScraperOptions, out io.Writer) (*ScraperApp, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	if opts.OutDir == "" {
		opts.OutDir = "manheim_auction"
	}

	lg, err := initLoggers(appConfig, "scraper")
	if err != nil {
		return nil, err
	}

	fetcher, err := manheimfetcher.NewManheimFetcherAdapter(manheimfetcher.Config{
		BaseURL: opts.BaseURL,
		Delay:   opts.Delay,
	})
	if err != nil {
		lg.close()
		return nil, fmt.Errorf("failed to create manheim fetcher: %w", err)
	}

	return &ScraperApp{
		scrape:  usecase.NewScrapeAuctionLocationsUseCase(fetcher, auctioncsv.NewLocationsWriter(opts.OutDir)),
		outDir:  opts.OutDir,
		loggers: lg,
		logger:  lg.base.WithFields(port.Fields{"component": "scraper"}),
		out:     out,
	}, nil
}

func (a *ScraperApp) Run() error {
	defer a.loggers.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextkeys.ContextWithLogger(ctx, a.logger)

	report, err := a.scrape.Execute(ctx)
	if err != nil {
		return err
	}

	printScrapeReport(a.out, a.outDir, report)
	return nil
}

func printScrapeReport(out io.Writer, outDir string, report *domain.ScrapeReport) {
	states := make([]string, 0, len(report.ByState))
	for st := range report.ByState {
		states = append(states, st)
	}
	sort.Strings(states)

	fmt.Fprintf(out, "Pages visited: %d\n", report.PagesVisited)
	fmt.Fprintf(out, "Locations found: %d (unique: %d)\n", report.LocationsFound, report.Unique)
	fmt.Fprintf(out, "States: %d\n", len(states))
	for _, st := range states {
		fmt.Fprintf(out, "  %s: %d\n", st, report.ByState[st])
	}
	fmt.Fprintf(out, "CSV files written to %s\n", outDir)
}
