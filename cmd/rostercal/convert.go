package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rostercal/internal/config"
	"rostercal/internal/ics"
	appLog "rostercal/internal/log"
	"rostercal/internal/prompt"
	"rostercal/internal/roster"
	"rostercal/internal/sheet"
)

type convertFlags struct {
	output       string
	month        string
	year         int
	person       string
	calendarName string
	alarm        int
	alarmEmail   string
	noPrompt     bool
}

func newConvertCmd(g *globalFlags) *cobra.Command {
	var f convertFlags

	c := &cobra.Command{
		Use:   "convert <roster.xlsx>",
		Short: "Convert one person's month of a roster workbook into an .ics file",
		Long: `Reads the roster worksheet, classifies each day's entry, asks for the
details of entries it does not recognise, merges leave into blocks and writes
an iCalendar file.

The month and year are taken from the file name (e.g. "Roster March 2024.xlsx")
unless given with --month and --year.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runConvert(cmd, cfg, args[0], f)
		},
	}

	flags := c.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "output .ics path (default: input name with .ics)")
	flags.StringVarP(&f.month, "month", "m", "", "month to convert (1-12 or name); default from file name")
	flags.IntVarP(&f.year, "year", "y", 0, "year to convert; default from file name")
	flags.StringVarP(&f.person, "person", "p", "", "roster name to export; default from config or asked")
	flags.StringVar(&f.calendarName, "calendar-name", "", "calendar name shown by calendar apps")
	flags.IntVar(&f.alarm, "alarm", 0, "reminder this many minutes before each event (0 = none)")
	flags.StringVar(&f.alarmEmail, "alarm-email", "", "send reminders to this e-mail address")
	flags.BoolVar(&f.noPrompt, "no-prompt", false, "never ask questions; unrecognised entries are skipped")

	return c
}

// apply lets explicitly set flags win over the config file.
func (f convertFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("person") {
		cfg.Roster.Person = strings.TrimSpace(f.person)
	}
	if flags.Changed("calendar-name") {
		cfg.Calendar.Name = f.calendarName
	}
	if flags.Changed("alarm") {
		cfg.Alarm.LeadMinutes = f.alarm
	}
	if flags.Changed("alarm-email") {
		cfg.Alarm.Email = strings.TrimSpace(f.alarmEmail)
	}
	cfg.Normalize()
}

func runConvert(cmd *cobra.Command, cfg *config.Config, input string, f convertFlags) error {
	month := 0
	if f.month != "" {
		m, err := sheet.ParseMonth(f.month)
		if err != nil {
			return err
		}
		month = int(m)
	}
	year, m, err := sheet.ResolveMonth(filepath.Base(input), f.year, month)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Calendar.Timezone, err)
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	r, err := sheet.Open(input, sheet.Options{
		Sheet:             cfg.Roster.Sheet,
		HeaderMarker:      cfg.Roster.HeaderMarker,
		HeaderSearchRows:  cfg.Roster.HeaderSearchRows,
		NameSearchColumns: cfg.Roster.NameSearchColumns,
	})
	if err != nil {
		return err
	}

	var asker prompt.Asker
	if !f.noPrompt {
		asker = newAsker(cmd)
	}

	person := cfg.Roster.Person
	if person == "" {
		if asker == nil {
			return errors.New("no person given; use --person or set roster.person in the config")
		}
		if person, err = asker.Choose("Whose roster should be converted?", r.Names()); err != nil {
			return err
		}
	}

	days := roster.DaysInMonth(year, m)
	cells, err := r.Cells(person, days)
	if err != nil {
		return err
	}
	first := roster.FirstOfMonth(year, m, loc)
	codes := catalog.ClassifyAll(cells)

	if pending := prompt.FreeTextDays(codes); len(pending) > 0 {
		if asker == nil {
			for _, i := range pending {
				appLog.Warn("skipping unrecognised roster entry",
					"date", first.AddDate(0, 0, i).Format(time.DateOnly),
					"entry", codes[i].Token,
				)
			}
		} else if codes, err = prompt.FillFreeText(first, codes, asker); err != nil {
			return err
		}
	}

	events, err := roster.GenerateMonth(first, codes, catalog)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = ics.Write(&buf, events, ics.Options{
		CalendarName: cfg.Calendar.Name,
		ProdID:       cfg.Calendar.ProdID,
		Timezone:     cfg.Calendar.Timezone,
		AlarmMinutes: cfg.Alarm.LeadMinutes,
		AlarmEmail:   cfg.Alarm.Email,
		UIDSeed:      person,
	})
	if err != nil {
		return err
	}

	out := f.output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".ics"
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	appLog.Info("calendar written",
		"path", out,
		"person", person,
		"month", fmt.Sprintf("%d-%02d", year, int(m)),
		"events", len(events),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events for %s (%s %d) to %s\n", len(events), person, m, year, out)
	return nil
}
