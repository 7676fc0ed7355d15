package client

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mwantia/godrive/internal/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "github.com/mwantia/godrive/internal/config/server"
)

// runWithAgent opens the configured stores for a single command invocation.
func runWithAgent(cmd *cobra.Command, fn func(ctx context.Context, owner string, a *agent.GoDriveAgent) error) error {
	owner := viper.GetString("owner")
	if owner == "" {
		return fmt.Errorf("an owner is required, set --owner or GODRIVE_OWNER")
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	ctx := cmd.Context()
	a := agent.NewAgent(cfg)
	if err := a.Open(ctx); err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	return fn(ctx, owner, a)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func parentLabel(id *string) string {
	if id == nil {
		return "root"
	}
	return *id
}
