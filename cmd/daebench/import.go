package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/srobinson/attention-matters/pkg/memory"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the persisted state with a snapshot read from file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		s := memory.New("daebench", seed, cfg, log.New(os.Stderr))
		if err := s.Import(data); err != nil {
			return err
		}

		if err := saveSystem(s); err != nil {
			return err
		}
		log.Info("imported", "path", args[0], "occurrences", s.Stats().Occurrences)
		return nil
	},
}
