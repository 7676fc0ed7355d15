package server

import (
	"context"
	"fmt"

	"github.com/mwantia/godrive/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/godrive/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the GoDrive agent",
		Long: `Start the GoDrive agent.

The agent opens the metadata and object stores, applies pending
migrations and runs the orphaned object cleanup until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			return agent.NewAgent(cfg).Serve(context.Background())
		},
	}

	return cmd
}
