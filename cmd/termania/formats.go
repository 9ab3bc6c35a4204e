package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termania/internal/registry"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported chart formats",
	Long:  `Shows the chart file extensions termania can open.`,
	Run:   runFormats,
}

func runFormats(cmd *cobra.Command, args []string) {
	formats := registry.List()

	if len(formats) == 0 {
		fmt.Println("No formats available.")
		return
	}

	fmt.Println("Supported formats:")
	fmt.Println()

	// Calculate column widths
	maxExtLen := 3 // "Ext" header
	for _, f := range formats {
		if len(f.Ext) > maxExtLen {
			maxExtLen = len(f.Ext)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxExtLen, "Ext", "Format")
	fmt.Printf("  %-*s  %s\n", maxExtLen, "---", "------")

	for _, f := range formats {
		fmt.Printf("  %-*s  %s\n", maxExtLen, f.Ext, f.Name)
	}

	fmt.Println()
	fmt.Println("Run 'termania play <file>' to play a chart.")
}
