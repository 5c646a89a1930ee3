// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	pak "github.com/lisamanaa189-commits/animated-fortnight"
	"github.com/lisamanaa189-commits/animated-fortnight/internal/progress"
	"github.com/spf13/cobra"
)

var (
	extractOutput  string
	extractFile    string
	extractPrefix  string
	extractInclude []string
	extractWorkers int
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive.pak>",
	Short: "Extract entries to an output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractFile != "" {
			return extractOne(args[0])
		}

		return extractAll(cmd.Context(), args[0])
	},
}

// extractOne writes a single named entry below the output directory.
func extractOne(archive string) error {
	r, err := pak.Open(archive)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	data, err := r.ReadEntry(extractFile)
	if err != nil {
		return err
	}

	outPath := filepath.Join(extractOutput, filepath.FromSlash(extractFile))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	slog.Info("Extracted entry", "path", extractFile, "bytes", len(data), "output", outPath)
	return nil
}

// extractAll writes every selected entry and reports per-entry outcomes.
func extractAll(ctx context.Context, archive string) error {
	r, err := pak.OpenWithOptions(archive, pak.ReaderOptions{
		PathPrefix: extractPrefix,
		Rules:      includeRules(extractInclude),
	})
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	info := r.Info()
	slog.Info("Extracting archive",
		"archive", archive,
		"version", info.Version,
		"entries", info.EntryCount,
		"output", extractOutput)

	bar := progress.New(info.EntryCount, !noProgress)
	outcomes, err := r.Extract(ctx, extractOutput, pak.ExtractOptions{
		MaxWorkers: extractWorkers,
		OnEntryDone: func(outcome pak.ExtractOutcome) {
			bar.Increment(outcome.Path)
		},
	})
	bar.Finish()
	if err != nil {
		return err
	}

	var failed int
	for _, outcome := range outcomes {
		if outcome.Err == nil {
			continue
		}

		failed++
		slog.Warn("Entry failed", "path", outcome.Path, "error", outcome.Err)
	}

	slog.Info("Extraction complete",
		"success", len(outcomes)-failed,
		"failed", failed,
		"output", extractOutput)
	return nil
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "extracted", "output directory for extracted files")
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "extract a single entry by path")
	extractCmd.Flags().StringVar(&extractPrefix, "prefix", "", "limit extraction to one path prefix")
	extractCmd.Flags().StringSliceVar(&extractInclude, "include", nil, "include only entries matching these patterns")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "number of extraction workers (0 means GOMAXPROCS)")
	rootCmd.AddCommand(extractCmd)
}
