// Package cmd wires the syntctl command-line surface: one subcommand per
// pipeline stage, plus the "export goc" projection.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syntruptor/syntctl/config"
	"github.com/syntruptor/syntctl/internal/logging"
	"go.uber.org/zap/zapcore"
)

var storePath string

// rootCmd is the base command when syntctl is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:     "syntctl",
	Short:   "Synteruptor: bacterial genome synteny-break pipeline",
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(); err != nil {
			return err
		}
		level, err := zapcore.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			level = zapcore.InfoLevel
		}
		return logging.Init(level)
	},
}

// Execute adds all child commands to the root command and runs it. This
// is called by main.main(), once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Fatal(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "d", "synteruptor.db", "path to the relational store")
	_ = viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}
