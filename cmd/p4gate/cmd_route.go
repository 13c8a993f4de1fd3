package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route <path>",
	Short: "Show the connection that owns a path",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	conn, ok := a.FindConnection(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: not in any workspace\n", args[0])
		return &exitCodeError{code: 1}
	}
	fmt.Println(conn.String())
	return nil
}
