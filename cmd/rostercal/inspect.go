package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"rostercal/internal/ics"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <calendar.ics>",
		Short: "List the events of a calendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ics.ParseFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s (%d events, timezone %s)\n", doc.Name, len(doc.Events), orDash(doc.Timezone))
			if z, err := ics.LookupZone(doc.Timezone); err == nil && len(doc.Events) > 0 {
				year := doc.Events[0].Start.Year()
				if start, end, err := z.Transitions(year); err == nil {
					fmt.Fprintf(out, "%s in %d: %s to %s\n", z.Daylight.Name, year,
						start.Format(time.DateOnly), end.Format(time.DateOnly))
				}
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("#", "Start", "End", "Summary", "Alarm")
			for i, ev := range doc.Events {
				t.Row(strconv.Itoa(i+1), formatStart(ev), formatEnd(ev), ev.Summary, orDash(strings.Join(ev.Alarms, ",")))
			}
			fmt.Fprintln(out, t.String())
			return nil
		},
	}
}

func formatStart(ev ics.ParsedEvent) string {
	if ev.AllDay {
		return ev.Start.Format("Mon 02 Jan 2006")
	}
	return ev.Start.Format("Mon 02 Jan 2006 15:04")
}

// formatEnd shows the last day of all-day events rather than the exclusive
// end date stored in the file.
func formatEnd(ev ics.ParsedEvent) string {
	if ev.AllDay {
		return ev.End.AddDate(0, 0, -1).Format("Mon 02 Jan 2006")
	}
	if sameDay(ev.Start, ev.End) {
		return ev.End.Format("15:04")
	}
	return ev.End.Format("Mon 02 Jan 2006 15:04")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
