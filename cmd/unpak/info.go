// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package main

import (
	"fmt"

	pak "github.com/lisamanaa189-commits/animated-fortnight"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <archive.pak>",
	Short: "Show archive-level metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := pak.ReadArchiveInfo(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Archive:       %s\n", args[0])
		fmt.Printf("PAK version:   %d\n", info.Version)
		fmt.Printf("Mount point:   %s\n", info.MountPoint)
		fmt.Printf("Index offset:  %d\n", info.IndexOffset)
		fmt.Printf("Index size:    %d\n", info.IndexSize)
		fmt.Printf("Entries:       %d\n", info.EntryCount)
		fmt.Printf("Encrypted:     %v\n", info.Encrypted)
		if info.ReplacedPaths > 0 {
			fmt.Printf("Replaced:      %d duplicate paths\n", info.ReplacedPaths)
		}
		if info.SkippedEntries > 0 {
			fmt.Printf("Skipped:       %d unreadable entries\n", info.SkippedEntries)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
