package main

import (
	"context"

	"github.com/spf13/cobra"
)

var originalCmd = &cobra.Command{
	Use:   "original <file> <dest>",
	Short: "Write the depot revision of a file to dest",
	Args:  cobra.ExactArgs(2),
	RunE:  runOriginal,
}

func init() {
	rootCmd.AddCommand(originalCmd)
}

func runOriginal(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := contextWithSignal(context.Background())
	defer cancel()

	return a.GetOriginalFile(ctx, args[0], args[1])
}
