package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/p4gate/internal/errx"
)

var editCmd = &cobra.Command{
	Use:   "edit <file>...",
	Short: "Make read-only workspace files writable through p4 edit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := contextWithSignal(context.Background())
	defer cancel()

	for _, arg := range args {
		file, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		if !a.Manages(file) {
			return errx.With(ErrNotManaged, ": %s", file)
		}
		if err := a.Interceptor().BeforeEdit(ctx, file); err != nil {
			return err
		}
	}
	return nil
}
