package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/tm"
)

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry id %q: %w", args[0], err)
			}
			sc, err := opts.resolveScope()
			if err != nil {
				return err
			}

			if !force {
				ok, err := confirm(cmd, fmt.Sprintf("Delete entry %s? (y/N) ", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
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

			deleted, err := eng.memory.Delete(cmd.Context(), sc, id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("entry %s: %w", id, tm.ErrNotFound)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
