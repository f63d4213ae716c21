package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/tm"
)

func newShowCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry id %q: %w", args[0], err)
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

			entry, err := eng.memory.Get(cmd.Context(), sc, id)
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, toListOutput([]tm.Entry{*entry})[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", entry.ID)
			fmt.Fprintf(out, "Scope:       %s\n", scope.FormatScope(entry.Scope))
			fmt.Fprintf(out, "Pair:        %s -> %s\n", entry.SourceLanguage, entry.TargetLanguage)
			fmt.Fprintf(out, "Source:      %s\n", entry.SourceText)
			fmt.Fprintf(out, "Translation: %s\n", entry.TranslatedText)
			if entry.Context != nil {
				fmt.Fprintf(out, "Context:     %s\n", *entry.Context)
			}
			fmt.Fprintf(out, "Uses:        %d\n", entry.UseCount)
			fmt.Fprintf(out, "Created:     %s\n", formatTimestamp(entry.CreatedAt))
			fmt.Fprintf(out, "Updated:     %s\n", formatTimestamp(entry.UpdatedAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}
