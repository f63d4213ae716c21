package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/tm"
)

func newStatsCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the translation memory",
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

			stats, err := eng.memory.Stats(cmd.Context(), sc)
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, stats)
			}
			outputStatsTable(cmd, sc, stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or json")

	return cmd
}

func outputStatsTable(cmd *cobra.Command, sc scope.Scope, stats tm.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scope:     %s\n", scope.FormatScope(sc))
	fmt.Fprintf(out, "Entries:   %d\n", stats.TotalEntries)
	fmt.Fprintf(out, "Use count: %d\n", stats.TotalUseCount)
	if len(stats.PerLanguagePair) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"From", "To", "Entries", "Uses"})
	for _, p := range stats.PerLanguagePair {
		t.AppendRow(table.Row{p.SourceLanguage, p.TargetLanguage, p.EntryCount, p.UseCount})
	}
	t.AppendFooter(table.Row{"", "Total", stats.TotalEntries, stats.TotalUseCount})
	t.Render()
}
