package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/engine"
)

var p4Cmd = &cobra.Command{
	Use:   "p4 <action> <file>...",
	Short: "Run a workspace action on files",
	Long: `Run one of the menu actions on each file through the connection that owns it.
Without arguments the available actions are listed.`,
	RunE: runP4,
}

func init() {
	p4Cmd.Flags().BoolP("force", "f", false, "Force the action (sync -f)")
	rootCmd.AddCommand(p4Cmd)
}

func runP4(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		printActions()
		return nil
	}
	if len(args) < 2 {
		return errx.With(engine.ErrUnknownVerb, ": expected an action and at least one file")
	}

	template := strings.ToLower(args[0])
	if force, _ := cmd.Flags().GetBool("force"); force {
		template += " -f"
	}
	if _, ok := engine.LookupAction(template); !ok {
		return errx.With(engine.ErrUnknownVerb, ": %q", template)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := contextWithSignal(context.Background())
	defer cancel()

	var failed bool
	for _, file := range args[1:] {
		if _, err := a.RunAction(ctx, template, file); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
			failed = true
		}
	}
	if failed {
		return &exitCodeError{code: 1}
	}
	return nil
}

func printActions() {
	for _, a := range engine.Actions() {
		if a.Separator {
			fmt.Println("  ---")
			continue
		}
		fmt.Printf("  %-12s p4 %s\n", a.Label, a.Template)
	}
}
