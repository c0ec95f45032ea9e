package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rostercal/internal/config"
	appLog "rostercal/internal/log"
	"rostercal/internal/prompt"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// newAsker is replaced in tests.
var newAsker = func(cmd *cobra.Command) prompt.Asker {
	return prompt.NewTerminal(cmd.InOrStdin(), cmd.ErrOrStderr())
}

type globalFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "rostercal",
		Short:         "Convert a monthly duty roster spreadsheet into an iCalendar file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.verbose {
				appLog.SetLevel(appLog.LevelDebug)
			} else {
				appLog.SetLevel(appLog.LevelInfo)
			}
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (.yaml or .toml; default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newConvertCmd(&g))
	root.AddCommand(newInspectCmd())
	root.AddCommand(newCodesCmd(&g))
	root.AddCommand(newConfigCmd(&g))
	root.AddCommand(newVersionCmd())

	return root
}

// loadConfig reads the config file, creating the default one on first run.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	path := g.path()
	cfg, err := config.Load(path)
	if err != nil {
		if cfg == nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		// The default config could not be written; carry on with it.
		appLog.Warn("could not write default config", "path", path, "err", err)
	}
	appLog.Debug("config loaded", "path", path)
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rostercal %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}
