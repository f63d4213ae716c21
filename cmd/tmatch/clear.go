package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/scope"
)

func newClearCmd(opts *globalOptions) *cobra.Command {
	var (
		sourceLanguage string
		targetLanguage string
		force          bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete your entries, optionally for one language pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := opts.resolveScope()
			if err != nil {
				return err
			}

			if !force {
				target := "all entries"
				if sourceLanguage != "" || targetLanguage != "" {
					target = fmt.Sprintf("entries for %s -> %s", orAny(sourceLanguage), orAny(targetLanguage))
				}
				ok, err := confirm(cmd, fmt.Sprintf("Delete %s of %s? (y/N) ", target, scope.FormatScope(sc)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Clear cancelled")
					return nil
				}
			}

			eng, err := opts.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = eng.Close()
			}()

			removed, err := eng.memory.Clear(cmd.Context(), sc, sourceLanguage, targetLanguage)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceLanguage, "from", "", "Only clear this source language")
	cmd.Flags().StringVar(&targetLanguage, "to", "", "Only clear this target language")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func orAny(language string) string {
	if language == "" {
		return "*"
	}
	return language
}
