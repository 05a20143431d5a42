// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/tomtom215/chatstat/internal/config"
	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metadata"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/report"
	"github.com/tomtom215/chatstat/internal/seed"
	"github.com/tomtom215/chatstat/internal/storage"
)

var (
	rows          int
	startDate     string
	endDate       string
	timezone      string
	seedValue     uint64
	output        string
	sampleReports int
	reportsPerSec float64
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Generate a synthetic Chatstat dataset",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := logging.DefaultConfig()
		cfg.Format = "console"
		if verbose {
			cfg.Level = "debug"
		}
		logging.Init(cfg)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := generatorOptions()
		if err != nil {
			return err
		}
		gen := seed.New(opts)
		evts := gen.Generate()
		logging.Info().Int("rows", len(evts)).Msg("Generated events")

		var buf bytes.Buffer
		if err := storage.WriteEvents(&buf, evts); err != nil {
			return fmt.Errorf("encode dataset: %w", err)
		}

		if output != "" {
			if err := os.WriteFile(output, buf.Bytes(), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			logging.Info().Str("file", output).Msg("Dataset written")
			return nil
		}

		return upload(cmd.Context(), gen, evts, buf.Bytes(), opts.End)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&rows, "rows", 20000, "number of events to generate")
	flags.StringVar(&startDate, "start", "", "first content date (YYYY-MM-DD), default two years before --end")
	flags.StringVar(&endDate, "end", "", "last content date (YYYY-MM-DD), default today")
	flags.StringVar(&timezone, "timezone", "UTC", "IANA zone of the generated timestamps, matching DATASET_TIMEZONE")
	flags.Uint64Var(&seedValue, "seed", 0, "random seed, 0 for a random dataset")
	flags.StringVarP(&output, "output", "o", "", "write the CSV to this file instead of the object store")
	flags.IntVar(&sampleReports, "sample-reports", 0, "number of reports to generate after uploading")
	flags.Float64Var(&reportsPerSec, "reports-per-second", 5, "pacing of sample report generation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func generatorOptions() (seed.Options, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return seed.Options{}, fmt.Errorf("invalid --timezone: %w", err)
	}
	opts := seed.Options{Rows: rows, Seed: seedValue, Location: loc}
	if endDate != "" {
		end, err := time.ParseInLocation(models.DateLayout, endDate, loc)
		if err != nil {
			return opts, fmt.Errorf("invalid --end: %w", err)
		}
		opts.End = end.Add(24*time.Hour - time.Second)
	}
	if startDate != "" {
		start, err := time.ParseInLocation(models.DateLayout, startDate, loc)
		if err != nil {
			return opts, fmt.Errorf("invalid --start: %w", err)
		}
		opts.Start = start
	}
	if !opts.Start.IsZero() && !opts.End.IsZero() && !opts.Start.Before(opts.End) {
		return opts, fmt.Errorf("--start must be before --end")
	}
	return opts, nil
}

// upload stores the dataset and generates the sample report history.
func upload(ctx context.Context, gen *seed.Generator, evts []models.Event, csv []byte, end time.Time) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	base := cfg.Server.PublicURL
	if base == "" {
		base = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	store, err := storage.Open(ctx, cfg.Storage, base)
	if err != nil {
		return fmt.Errorf("open object store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing object store")
		}
	}()

	if err := store.Put(ctx, cfg.Dataset.Key, csv, "text/csv"); err != nil {
		return fmt.Errorf("upload dataset: %w", err)
	}
	logging.Info().Str("key", cfg.Dataset.Key).Int("bytes", len(csv)).Msg("Dataset uploaded")

	if sampleReports <= 0 {
		return nil
	}

	// generatorOptions has already validated the zone.
	loc, _ := time.LoadLocation(timezone)
	engine := report.NewEngine(report.Deps{
		Dataset:  staticDataset(evts),
		Objects:  store,
		Metadata: metadata.New(store),
	}, report.Options{
		PresignTTL:    cfg.Storage.PresignTTL,
		DefaultFormat: cfg.Report.DefaultFormat,
		Now:           func() time.Time { return time.Now().In(loc) },
	})

	// Report keys are timestamps; pacing keeps them distinct and spares
	// the store a burst of writes.
	limit := rate.Inf
	if reportsPerSec > 0 {
		limit = rate.Limit(reportsPerSec)
	}
	limiter := rate.NewLimiter(limit, 1)
	accounts := gen.Accounts()
	for i := 0; i < sampleReports; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		req := gen.SampleRequest(accounts[i%len(accounts)], end)
		res, err := engine.Generate(ctx, req)
		if err != nil {
			logging.Warn().Err(err).Str("email", req.Email).Str("child", req.Children).Msg("Sample report failed")
			continue
		}
		logging.Debug().Str("key", res.MetadataKey).Int("rows", len(res.Rows)).Msg("Sample report stored")
	}
	logging.Info().Int("reports", sampleReports).Msg("Sample reports generated")
	return nil
}

// staticDataset serves the generated events to the report engine.
type staticDataset []models.Event

func (d staticDataset) GetDataset(context.Context) ([]models.Event, error) {
	return d, nil
}
