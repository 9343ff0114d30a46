package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syntruptor/syntctl/internal/catalog"
	"github.com/syntruptor/syntctl/internal/ortholog"
)

var orthologHitsPath string

var orthologCmd = &cobra.Command{
	Use:   "ortholog",
	Short: "Build ortholog pairs from a similarity hits file (§4.1)",
	RunE: func(cmd *cobra.Command, args []string) error {
		hitsFile, err := os.Open(orthologHitsPath)
		if err != nil {
			return fmt.Errorf("open hits file: %w", err)
		}
		defer hitsFile.Close()

		hits, err := ortholog.ParseHits(hitsFile)
		if err != nil {
			return fmt.Errorf("parse hits: %w", err)
		}

		genesFile, err := os.Open(genesPath)
		if err != nil {
			return fmt.Errorf("open gene catalog: %w", err)
		}
		defer genesFile.Close()

		genes, err := catalog.ParseGeneCatalog(genesFile)
		if err != nil {
			return fmt.Errorf("parse gene catalog: %w", err)
		}

		params := ortholog.Params{
			MinAlenFrac:     viper.GetFloat64("ortholog.min-alen-frac"),
			MinIdentity:     viper.GetFloat64("ortholog.min-identity"),
			MaxEvalue:       viper.GetFloat64("ortholog.max-evalue"),
			EvalueTolerance: viper.GetFloat64("ortholog.evalue-tolerance"),
		}

		pairs, err := ortholog.Build(hits, ortholog.GeneInfoFromCatalog(genes), params)
		if err != nil {
			return fmt.Errorf("build orthologs: %w", err)
		}

		return ortholog.WritePairs(cmd.OutOrStdout(), pairs)
	},
}

func init() {
	orthologCmd.Flags().StringVarP(&orthologHitsPath, "hits", "i", "", "path to the all-vs-all similarity hits file")
	orthologCmd.Flags().StringVarP(&genesPath, "genes", "g", "", "path to the gene catalog file")
	_ = orthologCmd.MarkFlagRequired("hits")
	_ = orthologCmd.MarkFlagRequired("genes")
	rootCmd.AddCommand(orthologCmd)
}
