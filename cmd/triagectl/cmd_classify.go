package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neuvia/backend/internal/application/services"
)

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "classify <text...>",
		Short: "Triage a free-text symptom description",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.load()
			if err != nil {
				return err
			}
			result := services.NewTriageMatcher(cat.Lexicon, cat.Remedies).Classify(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintf(out, "Kind: %s\n\n%s\n", result.Kind, services.ComposeReply(result))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the classification as JSON")
	return cmd
}
