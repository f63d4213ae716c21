package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/tm"
)

func newLookupCmd(opts *globalOptions) *cobra.Command {
	var (
		sourceLanguage string
		targetLanguage string
		minPercent     int
		maxResults     int
		format         string
	)

	cmd := &cobra.Command{
		Use:   "lookup <text>",
		Short: "Suggest stored translations for similar text",
		Args:  cobra.ExactArgs(1),
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

			input := tm.LookupInput{
				Scope:          sc,
				SourceLanguage: sourceLanguage,
				TargetLanguage: targetLanguage,
				SourceText:     args[0],
			}
			if cmd.Flags().Changed("min") {
				input.MinMatchPercent = &minPercent
			}
			if cmd.Flags().Changed("max") {
				input.MaxResults = &maxResults
			}

			matches, err := eng.memory.Lookup(cmd.Context(), input)
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, matches)
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches")
				return nil
			}
			outputMatchTable(cmd, matches)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceLanguage, "from", "", "Source language code")
	cmd.Flags().StringVar(&targetLanguage, "to", "", "Target language code")
	cmd.Flags().IntVar(&minPercent, "min", 0, "Minimum match percent (default from config)")
	cmd.Flags().IntVar(&maxResults, "max", 0, "Maximum number of matches (default from config)")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func outputMatchTable(cmd *cobra.Command, matches []tm.Match) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	// Match, Uses and the 36 cell id are fixed; source and translation share the rest.
	textWidth := textColumnWidth(getTerminalWidth(), 5+4+36, 2, 5)

	t.AppendHeader(table.Row{"Match", "Source", "Translation", "Uses", "ID"})
	for _, m := range matches {
		t.AppendRow(table.Row{
			fmt.Sprintf("%d%%", m.MatchPercent),
			truncate(m.SourceText, textWidth),
			truncate(m.TranslatedText, textWidth),
			m.UseCount,
			m.EntryID.String(),
		})
	}

	t.Render()
}
