package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <file>...",
	Short: "Delete files, opening Perforce-known files for delete",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := contextWithSignal(context.Background())
	defer cancel()

	fsys := a.FS(ctx)
	for _, arg := range args {
		file, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		if err := fsys.Remove(file); err != nil {
			return err
		}
	}
	return nil
}
