package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syntruptor/syntctl/internal/pipeline/gocexport"
	"github.com/syntruptor/syntctl/internal/store"
)

var exportOutPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export flat projections of the store",
}

var exportGocCmd = &cobra.Command{
	Use:   "goc",
	Short: "Export the per-break gene-order-conservation input TSV (§12)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ctx, cancel := s.Context()
		defer cancel()

		rows, err := gocexport.Load(ctx, s)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if exportOutPath != "" {
			f, err := os.Create(exportOutPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOutPath, err)
			}
			defer f.Close()
			out = f
		}
		return gocexport.Write(out, rows)
	},
}

func init() {
	exportGocCmd.Flags().StringVarP(&exportOutPath, "out", "o", "", "output path (default stdout)")
	exportCmd.AddCommand(exportGocCmd)
	rootCmd.AddCommand(exportCmd)
}
