package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neuvia/backend/internal/domain/entities"
)

func newLexiconCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lexicon",
		Short: "List conditions and their severe trigger phrases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := root.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cat.Lexicon.Each(func(c entities.Condition) {
				fmt.Fprintf(out, "%s (%s)\n", c.Name, c.Name.DisplayName())
				fmt.Fprintf(out, "  %s\n", strings.Join(c.Phrases, ", "))
			})
			fmt.Fprintf(out, "\nRemedy categories: %s\n", strings.Join(cat.Remedies.Categories(), ", "))
			return nil
		},
	}
}
