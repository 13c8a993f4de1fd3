package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
)

var mvCmd = &cobra.Command{
	Use:   "mv <from> <to>",
	Short: "Rename a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runMv,
}

func init() {
	rootCmd.AddCommand(mvCmd)
}

func runMv(cmd *cobra.Command, args []string) error {
	from, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	to, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := contextWithSignal(context.Background())
	defer cancel()

	return a.FS(ctx).Rename(from, to)
}
