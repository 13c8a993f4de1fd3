package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <path>...",
	Short: "Show what Perforce knows about files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := contextWithSignal(context.Background())
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tACTION\tDEPOT\tHAVE\tHEAD")
	var failed bool
	for _, path := range args {
		st, err := a.Status(ctx, path)
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		case st == nil:
			fmt.Fprintf(w, "%s\t-\t(not in perforce)\t-\t-\n", path)
		default:
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", path, st.Action, st.DepotFile, st.HaveRevision, st.HeadRevision)
		}
	}
	w.Flush()
	if failed {
		return &exitCodeError{code: 1}
	}
	return nil
}
