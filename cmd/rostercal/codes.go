package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newCodesCmd(g *globalFlags) *cobra.Command {
	var summer bool

	c := &cobra.Command{
		Use:   "codes",
		Short: "Print the shift codes the converter recognises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Code", "Event", "Kind", "Time")
			for _, spec := range catalog.Specs() {
				code := catalog.Classify(spec.Token)
				when := "-"
				if span, ok := catalog.Times(code, summer); ok {
					when = span.String()
					if code.Overnight {
						when += " (+1 day)"
					}
				}
				t.Row(spec.Token, spec.Name, spec.Kind.String(), when)
			}
			season := "winter"
			if summer {
				season = "summer (April to October)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shift times for %s\n%s\n", season, t.String())
			return nil
		},
	}
	c.Flags().BoolVar(&summer, "summer", false, "show summer times")
	return c
}
