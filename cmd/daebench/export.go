package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current snapshot to a file, or stdout with --out -",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSystem()
		if err != nil {
			return err
		}

		data, err := s.Export()
		if err != nil {
			return err
		}

		if exportOut == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}

		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			return err
		}
		log.Info("exported", "path", exportOut, "bytes", len(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output path, or - for stdout")
}
