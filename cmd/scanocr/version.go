package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/scanocr/internal/core/ocr/tesseract"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scanocr %s (%s)\n", Version, Commit)
		fmt.Fprintf(cmd.OutOrStdout(), "gosseract backend: %v\n", tesseract.Enabled)
	},
}
