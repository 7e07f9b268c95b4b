package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Run the activate/drift/interference/coupling pipeline and print the composed context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSystem()
		if err != nil {
			return err
		}

		query := strings.TrimSpace(args[0])
		result := s.Query(query)
		surf := s.ComputeSurface(result)
		ctx := s.ComposeContext(surf, result, query)

		if ctx.Text == "" {
			fmt.Println("(no context surfaced)")
		} else {
			fmt.Println(ctx.Text)
		}

		return saveSystem(s)
	},
}
