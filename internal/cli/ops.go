package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-ml/lumen/internal/graph"
	"github.com/lumen-ml/lumen/internal/lower"
)

// NewOpsCommand creates the ops command.
func NewOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the operator types the common engine lowers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := lower.New(graph.NewGraph("ops"), lower.NewBindings(nil), lower.Options{})
			for _, name := range engine.Supported() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
