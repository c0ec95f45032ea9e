package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"rostercal/internal/config"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	c.AddCommand(newConfigInitCmd(g))
	c.AddCommand(newConfigShowCmd(g))
	return c
}

func (g *globalFlags) path() string {
	if g.configPath != "" {
		return g.configPath
	}
	return config.DefaultPath()
}

func newConfigInitCmd(g *globalFlags) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	c.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return c
}

func newConfigShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			data, err := config.Marshal(g.path(), cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			if err == nil {
				if verr := cfg.Validate(); verr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", verr)
				}
			}
			return err
		},
	}
}
