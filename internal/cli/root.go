// Package cli implements harbinger-cli, the offline companion to the triage
// service: analyze evidence images, score priorities and validate triaged
// incident exports without running Kafka or the HTTP API.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/harbinger/internal/observability"
	"github.com/couchcryptid/harbinger/internal/triage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

type app struct {
	v       *viper.Viper
	cfgFile string
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Each call gets its own viper instance
// so commands can be executed repeatedly in tests.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "harbinger-cli",
		Short: "Offline disaster evidence triage",
		Long: `harbinger-cli runs the same heuristics as the harbinger service on local
files: disaster classification, image authenticity and dispatch priority.

Flags can also be set with HARBINGER_* environment variables (for example
HARBINGER_ANALYZE_WORKERS) or a YAML config file with one section per
command (default: $HOME/.harbinger/config.yaml).`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose logging to stderr")
	root.PersistentFlags().StringP("output", "o", "text", "output format: text, json or yaml")
	_ = a.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = a.v.BindPFlag("output", root.PersistentFlags().Lookup("output"))

	root.AddCommand(
		a.newAnalyzeCmd(),
		a.newPriorityCmd(),
		a.newValidateCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "harbinger-cli %s\n", Version)
		},
	}
}

// initConfig reads the config file and HARBINGER_* environment variables.
func (a *app) initConfig(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("HARBINGER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", a.cfgFile, err)
		}
		return a.checkOutput()
	}

	if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".harbinger"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
		if err := a.v.ReadInConfig(); err == nil && a.v.GetBool("verbose") {
			fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", a.v.ConfigFileUsed())
		}
	}
	return a.checkOutput()
}

func (a *app) checkOutput() error {
	switch f := a.v.GetString("output"); f {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newService builds a triage service with its own metrics registry and no
// geocoder; offline analysis never leaves the machine.
func (a *app) newService(w io.Writer) *triage.Service {
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	return triage.NewService(nil, 0, a.logger(w), metrics)
}
