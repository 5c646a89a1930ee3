// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package main

import (
	"fmt"

	pak "github.com/lisamanaa189-commits/animated-fortnight"
	"github.com/spf13/cobra"
	"github.com/woozymasta/pathrules"
)

var (
	listPrefix  string
	listInclude []string
)

var listCmd = &cobra.Command{
	Use:   "list <archive.pak>",
	Short: "List archive entries with sizes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := pak.OpenWithOptions(args[0], pak.ReaderOptions{
			PathPrefix: listPrefix,
			Rules:      includeRules(listInclude),
		})
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		fmt.Printf("%-60s %12s %10s\n", "Path", "Size", "Compressed")

		var count int
		var totalSize uint64
		for s := range r.Summaries() {
			compressed := "no"
			if s.Compressed {
				compressed = "yes"
			}

			fmt.Printf("%-60s %12s %10s\n", s.Path, humanSize(s.UncompressedSize), compressed)
			count++
			totalSize += s.UncompressedSize
		}

		fmt.Printf("\n%d entries, %s total\n", count, humanSize(totalSize))
		return nil
	},
}

// humanSize formats a byte count with a binary unit suffix.
func humanSize(n uint64) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.2f KiB", float64(n)/(1<<10))
	case n < 1<<30:
		return fmt.Sprintf("%.2f MiB", float64(n)/(1<<20))
	default:
		return fmt.Sprintf("%.2f GiB", float64(n)/(1<<30))
	}
}

// includeRules converts CLI patterns into ordered include rules.
func includeRules(patterns []string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		rules = append(rules, pathrules.Rule{
			Action:  pathrules.ActionInclude,
			Pattern: pattern,
		})
	}

	return rules
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "limit listing to one path prefix")
	listCmd.Flags().StringSliceVar(&listInclude, "include", nil, "include only entries matching these patterns")
	rootCmd.AddCommand(listCmd)
}
