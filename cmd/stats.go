package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/linkrank/internal/config"
	"github.com/papapumpkin/linkrank/internal/ui"
	"github.com/papapumpkin/linkrank/internal/webgraph"
)

var statsCmd = &cobra.Command{
	Use:   "stats [FILE]",
	Short: "Print node and edge counts of an edge list without ranking",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("list-dangling", false, "print pages that are linked to but have no outgoing links")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	listDangling, _ := cmd.Flags().GetBool("list-dangling")

	in, source, closeInput, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer closeInput()

	g, err := webgraph.Load(in, graphOptions(cfg.Grouping)...)
	if err != nil {
		return fmt.Errorf("loading %s: %w", source, err)
	}

	printer := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColor(cmd.ErrOrStderr()))
	printer.Stats(g.Stats())
	if listDangling {
		for _, id := range g.DanglingTargets() {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
	}
	return nil
}
