package main

import (
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kompox/lsinstall/config/lsenv"
	"github.com/kompox/lsinstall/internal/logging"
)

// errNoCommand makes a bare invocation exit non-zero after printing usage.
var errNoCommand = errors.New("no command specified")

func newRootCmd() *cobra.Command {
	var logFile *logging.LogFile

	cmd := &cobra.Command{
		Use:   "lsinstall",
		Short: "Install LangSmith and LangGraph Platform with Helm",
		Long: `lsinstall deploys LangSmith and the LangGraph Platform data plane into a
namespace derived from this machine's hostname, and tears them down again.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errNoCommand
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("env-file", lsenv.DefaultEnvFileName, "Credentials file with initialOrgAdminEmail and LicenseKey")
	pf.String("config", lsenv.DefaultConfigFileName, "Installer config file, optional (env "+lsenv.ConfigEnvKey+")")
	pf.String("kubeconfig", "", "Path to the kubeconfig file (default: $KUBECONFIG or ~/.kube/config)")
	pf.String("context", "", "Kubeconfig context to use (default: current context)")
	pf.String("log-format", "human", "Log format (human|text|json) (env LSINSTALL_LOG_FORMAT)")
	pf.String("log-output", "-", "Log destination (-|none|PATH) (env LSINSTALL_LOG_OUTPUT)")
	pf.String("log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		cfg := &logging.LogConfig{
			Format: envOrFlag(c, "log-format", "LSINSTALL_LOG_FORMAT"),
			Output: envOrFlag(c, "log-output", "LSINSTALL_LOG_OUTPUT"),
			Level:  flagString(c, "log-level"),
		}
		debug := debugRequested(c)
		if debug {
			cfg.Level = "DEBUG"
		} else {
			quietKlog()
		}
		l, lf, err := logging.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		logFile = lf
		ctx := logging.WithLogger(c.Context(), l.With("runId", uuid.NewString()))
		c.SetContext(ctx)
		return nil
	}
	cmd.PersistentPostRunE = func(c *cobra.Command, _ []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	}

	cmd.AddCommand(newCmdUp())
	cmd.AddCommand(newCmdDown())
	cmd.AddCommand(newCmdVersion())
	return cmd
}

// envOrFlag returns the environment value when set, otherwise the flag value.
func envOrFlag(c *cobra.Command, flag, env string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return flagString(c, flag)
}

func flagString(c *cobra.Command, name string) string {
	if f := findFlag(c, name); f != nil {
		return f.Value.String()
	}
	return ""
}

// debugRequested reports whether the running subcommand has --debug set.
func debugRequested(c *cobra.Command) bool {
	f := findFlag(c, "debug")
	return f != nil && f.Value.String() == "true"
}
