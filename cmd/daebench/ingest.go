package main

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/srobinson/attention-matters/pkg/memory"
)

var (
	ingestConscious bool
	ingestName      string

	ingestCmd = &cobra.Command{
		Use:   "ingest [text]",
		Short: "Ingest text into the memory engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSystem()
			if err != nil {
				return err
			}

			kind := memory.Subconscious
			if ingestConscious {
				kind = memory.Conscious
			}

			id, err := s.Ingest(strings.TrimSpace(args[0]), kind, ingestName)
			if err != nil {
				return err
			}

			log.Info("ingested", "episode", id, "kind", kind.String())
			return saveSystem(s)
		},
	}
)

func init() {
	ingestCmd.Flags().BoolVar(&ingestConscious, "conscious", false, "ingest into the persistent conscious episode")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "name for the resulting subconscious episode")
}
