package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neuvia/backend/internal/application/services"
	"github.com/neuvia/backend/internal/domain/entities"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize key=value...",
		Short: "Validate intake values and print the normalized symptoms",
		Long:  "Validates the given intake values against the required fields.\nExits non-zero and lists the missing fields when the form is incomplete.",
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(args))
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || strings.TrimSpace(key) == "" {
					return fmt.Errorf("invalid argument %q: want key=value", arg)
				}
				values[strings.TrimSpace(key)] = value
			}

			fields := entities.NewFieldSet(values)
			validation := services.ValidateIntake(fields, entities.RequiredIntakeKeys)
			if !validation.OK {
				return fmt.Errorf("intake blocked, missing: %s", strings.Join(validation.Missing, ", "))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(services.NormalizeIntake(fields))
		},
	}
}
