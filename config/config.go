// Package config is for app-wide settings unmarshalled from Viper (see
// /cmd), with defaults seeded from a .env file when present.
package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// OrthologConfig holds the ortholog builder's filter thresholds (§4.1).
type OrthologConfig struct {
	MinAlenFrac     float64 `mapstructure:"min-alen-frac"`
	MinIdentity     float64 `mapstructure:"min-identity"`
	MaxEvalue       float64 `mapstructure:"max-evalue"`
	EvalueTolerance float64 `mapstructure:"evalue-tolerance"`
}

// ParalogConfig holds the paralog builder's filter thresholds (§4.2).
type ParalogConfig struct {
	MinAlenFrac float64 `mapstructure:"min-alen-frac"`
	MinIdentity float64 `mapstructure:"min-identity"`
	MaxEvalue   float64 `mapstructure:"max-evalue"`
}

// BlockConfig holds the block finder's tolerance (§4.4).
type BlockConfig struct {
	Tolerance int `mapstructure:"tolerance"`
}

// BreakConfig holds the break finder's adjacency window (§4.5).
type BreakConfig struct {
	MaxIncludedBlocks int `mapstructure:"max-included-blocks"`
}

// RankerConfig holds the ranker's clean-mode flag (§4.7).
type RankerConfig struct {
	Clean bool `mapstructure:"clean"`
}

// ReorderConfig holds the reorderer's ambiguous-part thresholds (§4.9).
type ReorderConfig struct {
	Auto              bool `mapstructure:"auto"`
	AmbiguousRangeMin int  `mapstructure:"ambiguous-range-min"`
	AmbiguousCountMax int  `mapstructure:"ambiguous-count-max"`
	AmbiguousCumulMax int  `mapstructure:"ambiguous-cumul-max"`
}

// Config is the root-level settings struct, a mix of settings available
// in an optional .env and those passed on the command line.
type Config struct {
	HitsPath    string `mapstructure:"hits"`
	GenesPath   string `mapstructure:"genes"`
	GenomesPath string `mapstructure:"genomes"`
	ParalogsPath string `mapstructure:"paralogs"`
	StorePath   string `mapstructure:"store"`
	LogLevel    string `mapstructure:"log-level"`

	Ortholog OrthologConfig
	Paralog  ParalogConfig
	Block    BlockConfig
	Break    BreakConfig
	Ranker   RankerConfig
	Reorder  ReorderConfig
}

// Load seeds viper's defaults, loads an optional .env file, and
// unmarshals the active configuration (flags override env, env
// overrides defaults, per viper's own precedence).
func Load() (Config, error) {
	_ = godotenv.Load()

	viper.SetDefault("store", "synteruptor.db")
	viper.SetDefault("log-level", "info")
	viper.SetDefault("ortholog.min-alen-frac", 0.40)
	viper.SetDefault("ortholog.min-identity", 0.40)
	viper.SetDefault("ortholog.max-evalue", 1e-10)
	viper.SetDefault("ortholog.evalue-tolerance", 1.0)
	viper.SetDefault("paralog.min-alen-frac", 0.5)
	viper.SetDefault("paralog.min-identity", 40.0)
	viper.SetDefault("paralog.max-evalue", 1e-20)
	viper.SetDefault("block.tolerance", 2)
	viper.SetDefault("break.max-included-blocks", 0)
	viper.SetDefault("ranker.clean", false)
	viper.SetDefault("reorder.auto", true)
	viper.SetDefault("reorder.ambiguous-range-min", 200)
	viper.SetDefault("reorder.ambiguous-count-max", 50)
	viper.SetDefault("reorder.ambiguous-cumul-max", 20)

	viper.SetEnvPrefix("syntctl")
	viper.AutomaticEnv()

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
