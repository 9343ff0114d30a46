package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syntruptor/syntctl/internal/model"
	"github.com/syntruptor/syntctl/internal/reorder"
	"github.com/syntruptor/syntctl/internal/store"
)

var (
	reorderAuto     bool
	reorderModel    string
	reorderSampleSp string
)

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Reassign display order for fragmented assemblies (§4.9)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reorderAuto == (reorderModel != "" || reorderSampleSp != "") {
			return fmt.Errorf("specify exactly one of --auto or --model/--sample")
		}
		if !reorderAuto && (reorderModel == "" || reorderSampleSp == "") {
			return fmt.Errorf("--model and --sample must both be set in manual mode")
		}

		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ctx, cancel := s.Context()
		defer cancel()

		p := reorder.Params{
			AmbiguousRangeMin: viper.GetInt("reorder.ambiguous-range-min"),
			AmbiguousCountMax: viper.GetInt("reorder.ambiguous-count-max"),
			AmbiguousCumulMax: viper.GetInt("reorder.ambiguous-cumul-max"),
		}

		if reorderAuto {
			return reorder.Run(ctx, s, p)
		}
		return reorder.RunManual(ctx, s, model.SpeciesID(reorderSampleSp), model.SpeciesID(reorderModel), p)
	},
}

func init() {
	reorderCmd.Flags().BoolVarP(&reorderAuto, "auto", "a", false, "automatically pick a reference for every fragmented genome")
	reorderCmd.Flags().StringVarP(&reorderModel, "model", "m", "", "reference species (manual mode, requires --sample)")
	reorderCmd.Flags().StringVarP(&reorderSampleSp, "sample", "s", "", "fragmented species to reorder (manual mode, requires --model)")
	rootCmd.AddCommand(reorderCmd)
}
