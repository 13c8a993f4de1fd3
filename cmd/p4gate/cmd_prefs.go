package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jingkaihe/p4gate/pkg/api"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change interception preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show preferences",
	Args:  cobra.NoArgs,
	RunE:  runPrefsShow,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change preferences; flags not given keep their value",
	Args:  cobra.NoArgs,
	RunE:  runPrefsSet,
}

// prefFields binds each preference to its flag name.
var prefFields = []struct {
	flag  string
	usage string
	field func(p *api.Preferences) *bool
}{
	{"intercept-add", "Run p4 add for new files", func(p *api.Preferences) *bool { return &p.InterceptAdd }},
	{"intercept-delete", "Run p4 delete for deleted files", func(p *api.Preferences) *bool { return &p.InterceptDelete }},
	{"intercept-edit", "Run p4 edit before writing read-only files", func(p *api.Preferences) *bool { return &p.InterceptEdit }},
	{"confirm-edit", "Ask before p4 edit", func(p *api.Preferences) *bool { return &p.ConfirmEdit }},
	{"case-sensitive", "Match workspace roots case-sensitively", func(p *api.Preferences) *bool { return &p.CaseSensitiveWorkspaces }},
	{"print-output", "Echo p4 commands and output", func(p *api.Preferences) *bool { return &p.PrintOutput }},
}

func init() {
	for _, f := range prefFields {
		prefsSetCmd.Flags().Bool(f.flag, false, f.usage)
	}
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return printPrefs(a.Preferences())
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := applyPrefFlags(a.Preferences(), cmd.Flags())
	if err != nil {
		return err
	}
	if err := a.SetPreferences(p); err != nil {
		return err
	}
	return printPrefs(p)
}

// applyPrefFlags copies the explicitly set flags onto p.
func applyPrefFlags(p api.Preferences, flags *pflag.FlagSet) (api.Preferences, error) {
	for _, f := range prefFields {
		if !flags.Changed(f.flag) {
			continue
		}
		v, err := flags.GetBool(f.flag)
		if err != nil {
			return p, err
		}
		*f.field(&p) = v
	}
	return p, nil
}

func printPrefs(p api.Preferences) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, f := range prefFields {
		fmt.Fprintf(w, "%s\t%t\n", f.flag, *f.field(&p))
	}
	return w.Flush()
}
