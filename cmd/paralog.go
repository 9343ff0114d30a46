package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syntruptor/syntctl/internal/catalog"
	"github.com/syntruptor/syntctl/internal/ortholog"
	"github.com/syntruptor/syntctl/internal/paralog"
)

var paralogHitsPath string

var paralogCmd = &cobra.Command{
	Use:   "paralog",
	Short: "Build within-genome paralog annotations from a similarity hits file (§4.2)",
	RunE: func(cmd *cobra.Command, args []string) error {
		hitsFile, err := os.Open(paralogHitsPath)
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

		params := paralog.Params{
			MinAlenFrac: viper.GetFloat64("paralog.min-alen-frac"),
			MinIdentity: viper.GetFloat64("paralog.min-identity"),
			MaxEvalue:   viper.GetFloat64("paralog.max-evalue"),
		}

		entries, err := paralog.Build(hits, ortholog.GeneInfoFromCatalog(genes), params)
		if err != nil {
			return fmt.Errorf("build paralogs: %w", err)
		}

		return paralog.WriteParalogs(cmd.OutOrStdout(), entries)
	},
}

func init() {
	paralogCmd.Flags().StringVarP(&paralogHitsPath, "hits", "i", "", "path to the all-vs-all similarity hits file")
	paralogCmd.Flags().StringVarP(&genesPath, "genes", "g", "", "path to the gene catalog file")
	// -s is the paralog builder's minimum-identity-percent flag, so it
	// does not collide on -p, which the load subcommand uses for the
	// --paralogs intermediate-file path.
	paralogCmd.Flags().Float64VarP(&paralogMinIdentity, "min-identity", "s", 40.0, "minimum percent identity")
	_ = viper.BindPFlag("paralog.min-identity", paralogCmd.Flags().Lookup("min-identity"))
	_ = paralogCmd.MarkFlagRequired("hits")
	_ = paralogCmd.MarkFlagRequired("genes")
	rootCmd.AddCommand(paralogCmd)
}

var paralogMinIdentity float64
