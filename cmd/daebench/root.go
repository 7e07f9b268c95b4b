package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	statePath  string
	configPath string
	seed       uint64

	rootCmd = &cobra.Command{
		Use:   "daebench",
		Short: "Drive a geometric associative memory engine from the command line",
		Long: `daebench ingests text into a memory engine instance, fires queries
against it, and snapshots its state to disk between invocations.`,
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	log.SetReportTimestamp(false)

	rootCmd.PersistentFlags().StringVar(&statePath, "state", "daebench.json", "path to the persisted snapshot")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an engine config file (optional)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 1, "RNG seed used when no snapshot exists yet")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
