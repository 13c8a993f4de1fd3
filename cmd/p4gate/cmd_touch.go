package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/p4gate/pkg/vfs"
)

var touchCmd = &cobra.Command{
	Use:   "touch <file>...",
	Short: "Create empty files, opening new workspace files for add",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTouch,
}

func init() {
	rootCmd.AddCommand(touchCmd)
}

func runTouch(cmd *cobra.Command, args []string) error {
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
		if err := vfs.Touch(fsys, file, 0644); err != nil {
			return err
		}
	}
	return nil
}
