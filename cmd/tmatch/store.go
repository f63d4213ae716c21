package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/tm"
)

func newStoreCmd(opts *globalOptions) *cobra.Command {
	var (
		sourceLanguage string
		targetLanguage string
		note           string
		format         string
	)

	cmd := &cobra.Command{
		Use:   "store <source> <translation>",
		Short: "Remember a translation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			sc, err := opts.resolveScope()
			if err != nil {
				return err
			}

			eng, err := opts.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = eng.Close()
			}()

			var contextPtr *string
			if strings.TrimSpace(note) != "" {
				c := note
				contextPtr = &c
			}

			entry, err := eng.memory.Store(cmd.Context(), tm.StoreInput{
				Scope: sc,
				StoreItem: tm.StoreItem{
					SourceLanguage: sourceLanguage,
					TargetLanguage: targetLanguage,
					SourceText:     args[0],
					TranslatedText: args[1],
					Context:        contextPtr,
				},
			})
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, entry)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (uses: %d)\n", entry.ID, entry.UseCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceLanguage, "from", "", "Source language code")
	cmd.Flags().StringVar(&targetLanguage, "to", "", "Target language code")
	cmd.Flags().StringVarP(&note, "context", "c", "", "Note about where the text is used")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
