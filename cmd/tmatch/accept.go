package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newAcceptCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <id>",
		Short: "Record that a suggested translation was used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry id %q: %w", args[0], err)
			}

			eng, err := opts.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = eng.Close()
			}()

			return eng.memory.Accept(cmd.Context(), id)
		},
	}
}
