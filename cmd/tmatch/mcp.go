package main

import (
	"github.com/spf13/cobra"

	"github.com/vault-md/tmatch/internal/logging"
	"github.com/vault-md/tmatch/internal/mcp"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start the Model Context Protocol server for tmatch on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := opts.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = eng.Close()
			}()

			// Tool calls that name no owner act as the CLI owner.
			owner := opts.owner
			if sc, err := opts.resolveScope(); err == nil {
				owner = sc.OwnerID
			}

			server := mcp.NewServer(eng.memory, mcp.Options{
				Version:      version,
				DefaultOwner: owner,
				Logger:       eng.logger,
			})

			log := logging.NewComponentLogger(eng.logger, "cli")
			log.Info("mcp server starting", "db", eng.cfg.ResolvedDBPath())
			return server.Run(cmd.Context())
		},
	}
}
