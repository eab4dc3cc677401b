// Command maek updates build targets: positional arguments become the
// target list, defaulting to ":dist" when empty; exit 0 on success, 1 on
// build failure, 2 on any other error.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"maek/examples/game"
	"maek/internal/buildlog"
	"maek/internal/scheduler"
)

const defaultTarget = ":dist"

func main() {
	var root, cacheFile string

	cmd := &cobra.Command{
		Use:   "maek [targets...]",
		Short: "update the given build targets, or the default target if none are given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := args
			if len(targets) == 0 {
				targets = []string{defaultTarget}
			}
			return run(cmd.Context(), root, cacheFile, targets)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&root, "root", ".", "directory every target path is resolved against")
	cmd.Flags().StringVar(&cacheFile, "cache", "maek-cache.json", "path to the persistent cache file")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if _, ok := buildlog.AsBuildError(err); ok {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(ctx context.Context, root, cacheFile string, targets []string) error {
	log := buildlog.New()
	eng := scheduler.New(root, cacheFile, log)

	if err := game.Configure(eng); err != nil {
		return err
	}

	return eng.Update(ctx, targets)
}
