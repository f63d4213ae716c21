package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/tm"
)

func newImportCmd(opts *globalOptions) *cobra.Command {
	var (
		sourceLanguage string
		targetLanguage string
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Store a JSON array of translations",
		Long: `Store a JSON array of translations read from a file, or from stdin when the
file is omitted or "-". Each element has sourceText, translatedText and
optionally sourceLanguage, targetLanguage and context. Missing languages
fall back to --from and --to.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.resolveScope()
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			items, err := readImport(cmd, path)
			if err != nil {
				return err
			}
			for i := range items {
				if items[i].SourceLanguage == "" {
					items[i].SourceLanguage = sourceLanguage
				}
				if items[i].TargetLanguage == "" {
					items[i].TargetLanguage = targetLanguage
				}
			}

			eng, err := opts.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = eng.Close()
			}()

			result := eng.memory.StoreBatch(cmd.Context(), sc, items)
			for _, f := range result.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "item %d: %v\n", f.Index, f.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d of %d items\n", len(result.Stored), len(items))

			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d items failed", len(result.Failed), len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceLanguage, "from", "", "Default source language code")
	cmd.Flags().StringVar(&targetLanguage, "to", "", "Default target language code")

	return cmd
}

func readImport(cmd *cobra.Command, path string) ([]tm.StoreItem, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var items []tm.StoreItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse import: %w", err)
	}
	return items, nil
}
