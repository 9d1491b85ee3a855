// triagectl runs the triage engine from the command line: classify free text,
// inspect the symptom lexicon, and validate/normalize intake values.
//
// Usage:
//
//	triagectl classify <text...>
//	triagectl lexicon
//	triagectl normalize key=value...
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neuvia/backend/internal/infrastructure/catalog"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	catalogPath string
}

func (o *rootOptions) load() (*catalog.Catalog, error) {
	cat, err := catalog.LoadOrDefault(o.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "triagectl",
		Short:         "Maternal-health symptom triage tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "Lexicon/remedy YAML override (default: built-in)")

	cmd.AddCommand(newClassifyCmd(opts))
	cmd.AddCommand(newLexiconCmd(opts))
	cmd.AddCommand(newNormalizeCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
