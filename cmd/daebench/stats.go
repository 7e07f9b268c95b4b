package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics for the persisted memory engine state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSystem()
		if err != nil {
			return err
		}

		st := s.Stats()
		fmt.Printf("episodes:               %d\n", st.Episodes)
		fmt.Printf("neighborhoods:          %d\n", st.Neighborhoods)
		fmt.Printf("occurrences:            %d\n", st.Occurrences)
		fmt.Printf("doc_count:              %d\n", st.DocCount)
		fmt.Printf("conscious_mass:         %.6f\n", st.ConsciousMass)
		fmt.Printf("total_mass:             %.6f\n", st.TotalMass)
		fmt.Printf("neighborhood_size_mean: %.4f\n", st.NeighborhoodSizeMean)
		fmt.Printf("neighborhood_size_std:  %.4f\n", st.NeighborhoodSizeStdDev)

		return nil
	},
}
