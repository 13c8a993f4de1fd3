package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/p4gate/pkg/api"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "p4gate",
	Short: "Route local file operations in Perforce workspaces to p4",
	Long: `p4gate maps files to the Perforce connection whose workspace owns them and
turns local edits, creations and deletions into p4 edit, add, revert and delete.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/p4gate/config.yaml)")
	pf.String("p4", api.DefaultBinary, "p4 executable")
	pf.Duration("timeout", api.DefaultCommandTimeout, "Timeout for each p4 command")
	pf.String("store", "", "Settings database (default $XDG_CONFIG_HOME/p4gate/settings.db)")
	pf.String("events", "", "Append p4 command and interception events to this JSON-L file")
	pf.BoolP("yes", "y", false, "Answer yes to every confirmation")
	pf.Bool("debug", false, "Enable debug logging")

	viper.BindPFlag("p4.binary", pf.Lookup("p4"))
	viper.BindPFlag("p4.timeout", pf.Lookup("timeout"))
	viper.BindPFlag("store.path", pf.Lookup("store"))
	viper.BindPFlag("events.path", pf.Lookup("events"))
	viper.BindPFlag("yes", pf.Lookup("yes"))
	viper.BindPFlag("debug", pf.Lookup("debug"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "p4gate"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("P4GATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: reading config: %v\n", err)
		}
	}
}

func setupLogging() {
	level := slog.LevelWarn
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the process configuration from viper.
func loadConfig() (*api.Config, error) {
	cfg := &api.Config{
		Binary:         viper.GetString("p4.binary"),
		CommandTimeout: viper.GetDuration("p4.timeout"),
		StorePath:      viper.GetString("store.path"),
		EventsPath:     viper.GetString("events.path"),
		AssumeYes:      viper.GetBool("yes"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitCodeError ends the process with code without printing anything
// more.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
