package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/tm"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		sourceLanguage string
		targetLanguage string
		limit          int
		offset         int
		format         string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible entries, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			entries, err := eng.memory.List(cmd.Context(), sc, tm.ListInput{
				SourceLanguage: sourceLanguage,
				TargetLanguage: targetLanguage,
				Limit:          limit,
				Offset:         offset,
			})
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, toListOutput(entries))
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries")
				return nil
			}
			outputEntryTable(cmd, entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceLanguage, "from", "", "Only list this source language")
	cmd.Flags().StringVar(&targetLanguage, "to", "", "Only list this target language")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}

type listOutputEntry struct {
	tm.Entry
	Scope string `json:"scope"`
}

func toListOutput(entries []tm.Entry) []listOutputEntry {
	output := make([]listOutputEntry, 0, len(entries))
	for _, e := range entries {
		output = append(output, listOutputEntry{Entry: e, Scope: scope.FormatScope(e.Scope)})
	}
	return output
}

func outputEntryTable(cmd *cobra.Command, entries []tm.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	// Scope, pair, uses, updated and id are fixed; source and translation share the rest.
	textWidth := textColumnWidth(getTerminalWidth(), 12+7+4+19+36, 2, 7)

	t.AppendHeader(table.Row{"Scope", "Pair", "Source", "Translation", "Uses", "Updated", "ID"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			truncate(scope.FormatScope(e.Scope), 12),
			e.SourceLanguage + "->" + e.TargetLanguage,
			truncate(e.SourceText, textWidth),
			truncate(e.TranslatedText, textWidth),
			e.UseCount,
			formatTimestamp(e.UpdatedAt),
			e.ID.String(),
		})
	}

	t.Render()
}
