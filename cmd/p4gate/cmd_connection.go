package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/api"
	"github.com/jingkaihe/p4gate/pkg/logging"
)

var connectionCmd = &cobra.Command{
	Use:     "connection",
	Aliases: []string{"conn"},
	Short:   "Manage Perforce connections",
}

var connectionLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List connections in routing order",
	Args:    cobra.NoArgs,
	RunE:    runConnectionLs,
}

var connectionAddCmd = &cobra.Command{
	Use:   "add <workspace>",
	Short: "Add a connection for a workspace root",
	Long: `Add a connection for a workspace root. Empty server, user, client or password
are not passed to p4, so P4CONFIG and P4* environment settings apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runConnectionAdd,
}

var connectionRmCmd = &cobra.Command{
	Use:   "rm <index>",
	Short: "Remove a connection by its index in ls",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionRm,
}

func init() {
	f := connectionAddCmd.Flags()
	f.StringP("server", "p", "", "P4PORT")
	f.StringP("user", "u", "", "P4USER")
	f.StringP("client", "c", "", "P4CLIENT")
	f.StringP("password", "P", "", "P4PASSWD")
	f.Int("position", -1, "Insert at this index instead of appending")

	connectionCmd.AddCommand(connectionLsCmd)
	connectionCmd.AddCommand(connectionAddCmd)
	connectionCmd.AddCommand(connectionRmCmd)
	rootCmd.AddCommand(connectionCmd)
}

func runConnectionLs(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tWORKSPACE\tSERVER\tUSER\tCLIENT\tPASSWORD")
	for i, c := range a.Connections() {
		password := ""
		if c.Password != "" {
			password = logging.Mask
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i, c.WorkspacePath, c.Server, c.User, c.Client, password)
	}
	return w.Flush()
}

func runConnectionAdd(cmd *cobra.Command, args []string) error {
	workspace, err := filepath.Abs(args[0])
	if err != nil {
		return errx.Wrap(api.ErrInvalidConnection, err)
	}
	server, _ := cmd.Flags().GetString("server")
	user, _ := cmd.Flags().GetString("user")
	client, _ := cmd.Flags().GetString("client")
	password, _ := cmd.Flags().GetString("password")
	position, _ := cmd.Flags().GetInt("position")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	conn := api.Connection{Server: server, User: user, Client: client, Password: password, WorkspacePath: workspace}
	conns, err := insertConnection(a.Connections(), conn, position)
	if err != nil {
		return err
	}
	if err := a.SetConnections(conns); err != nil {
		return err
	}
	fmt.Printf("Added %s\n", conn)
	return nil
}

func runConnectionRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	conns, removed, err := removeConnection(a.Connections(), args[0])
	if err != nil {
		return err
	}
	if err := a.SetConnections(conns); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", removed)
	return nil
}

// insertConnection returns a new list with conn at position, or appended
// when position is negative.
func insertConnection(conns []api.Connection, conn api.Connection, position int) ([]api.Connection, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	if position < 0 {
		position = len(conns)
	}
	if position > len(conns) {
		return nil, errx.With(ErrBadIndex, ": %d (have %d)", position, len(conns))
	}
	out := make([]api.Connection, 0, len(conns)+1)
	out = append(out, conns[:position]...)
	out = append(out, conn)
	return append(out, conns[position:]...), nil
}

func removeConnection(conns []api.Connection, index string) ([]api.Connection, api.Connection, error) {
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(conns) {
		return nil, api.Connection{}, errx.With(ErrBadIndex, ": %q (have %d)", index, len(conns))
	}
	out := make([]api.Connection, 0, len(conns)-1)
	out = append(out, conns[:i]...)
	return append(out, conns[i+1:]...), conns[i], nil
}
