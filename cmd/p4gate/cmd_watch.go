package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/p4gate/pkg/api"
	"github.com/jingkaihe/p4gate/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]...",
	Short: "Open newly created workspace files for add as they appear",
	Long: `Watch directory trees and run p4 add for files created inside configured
workspaces. With no arguments every workspace root is watched. Runs until
interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	dirs, err := watchRoots(args, a.Connections())
	if err != nil {
		return err
	}

	w, err := watch.New(a.Interceptor(), watch.WithFilter(a.Manages), watch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	ctx, cancel := contextWithSignal(context.Background())
	defer cancel()

	fmt.Fprintf(os.Stderr, "Watching %d directories. Press Ctrl-C to stop.\n", len(w.Paths()))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchRoots resolves explicit directories, or falls back to every
// workspace root. Duplicates are dropped.
func watchRoots(args []string, conns []api.Connection) ([]string, error) {
	if len(args) == 0 {
		for _, c := range conns {
			args = append(args, c.WorkspacePath)
		}
	}
	if len(args) == 0 {
		return nil, ErrNoWorkspaces
	}
	seen := make(map[string]bool, len(args))
	dirs := make([]string, 0, len(args))
	for _, arg := range args {
		dir, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs, nil
}
