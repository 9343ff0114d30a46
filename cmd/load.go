package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/syntruptor/syntctl/internal/catalog"
	"github.com/syntruptor/syntctl/internal/store"
)

var (
	loadOrthoPairsPath string
	loadParalogsPath   string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the gene catalog, genome metadata, orthologs and paralogs into the store (§4.3, §6.3-6.5)",
	RunE: func(cmd *cobra.Command, args []string) error {
		genes, err := withFile(genesPath, catalog.ParseGeneCatalog)
		if err != nil {
			return fmt.Errorf("genes: %w", err)
		}
		var genomeMeta []catalog.GenomeMeta
		if genomesPath != "" {
			genomeMeta, err = withFile(genomesPath, catalog.ParseGenomeMeta)
			if err != nil {
				return fmt.Errorf("genomes: %w", err)
			}
		}
		orthoPairs, err := withFile(loadOrthoPairsPath, catalog.ParseOrthoPairs)
		if err != nil {
			return fmt.Errorf("orthologs: %w", err)
		}
		var paralogs []catalog.ParalogEntry
		if loadParalogsPath != "" {
			paralogs, err = withFile(loadParalogsPath, catalog.ParseParalogPairs)
			if err != nil {
				return fmt.Errorf("paralogs: %w", err)
			}
		}

		s, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		ctx, cancel := s.Context()
		defer cancel()

		return catalog.Load(ctx, s, catalog.Input{
			Genes:      genes,
			GenomeMeta: genomeMeta,
			OrthoPairs: orthoPairs,
			Paralogs:   paralogs,
		})
	},
}

// withFile opens path and hands its contents to parse, closing the file
// whether or not parse succeeds.
func withFile[T any](path string, parse func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func init() {
	loadCmd.Flags().StringVarP(&genesPath, "genes", "g", "", "path to the gene catalog file")
	loadCmd.Flags().StringVarP(&genomesPath, "genomes", "G", "", "path to the optional genome metadata file")
	loadCmd.Flags().StringVarP(&loadOrthoPairsPath, "orthologs", "o", "", "path to the ortholog-pairs intermediate file")
	loadCmd.Flags().StringVarP(&loadParalogsPath, "paralogs", "p", "", "path to the paralogs intermediate file")
	_ = loadCmd.MarkFlagRequired("genes")
	_ = loadCmd.MarkFlagRequired("orthologs")
	rootCmd.AddCommand(loadCmd)
}
