package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"rostercal/internal/ics"
	"rostercal/internal/roster"
)

// NOTE: This file provides the configuration model and full load/save
// behavior, including first-run config creation and 0600 permissions.
// The codec is chosen from the file extension: .toml uses TOML, anything
// else YAML.

const (
	DefaultCalendarName = ics.DefaultCalendarName
	DefaultProdID       = ics.DefaultProdID
	DefaultTimezone     = ics.DefaultTimezone
	DefaultSheet        = "Roster"
	DefaultHeaderMarker = "NAME"

	defaultHeaderSearchRows  = 10
	defaultNameSearchColumns = 5
)

// CalendarConfig controls the generated calendar file.
type CalendarConfig struct {
	// Name is written as X-WR-CALNAME.
	Name string `yaml:"name" toml:"name"`
	// ProdID is the PRODID of the generated file.
	ProdID string `yaml:"prod_id" toml:"prod_id"`
	// Timezone must be one of the zones known to internal/ics.
	Timezone string `yaml:"timezone" toml:"timezone"`
}

// RosterConfig describes where the roster lives inside the workbook.
type RosterConfig struct {
	Sheet             string `yaml:"sheet" toml:"sheet"`
	HeaderMarker      string `yaml:"header_marker" toml:"header_marker"`
	HeaderSearchRows  int    `yaml:"header_search_rows" toml:"header_search_rows"`
	NameSearchColumns int    `yaml:"name_search_columns" toml:"name_search_columns"`
	// Person is the roster row to export. Empty means ask interactively.
	Person string `yaml:"person" toml:"person"`
}

// AlarmConfig adds a reminder to every event when LeadMinutes > 0.
type AlarmConfig struct {
	LeadMinutes int `yaml:"lead_minutes" toml:"lead_minutes"`
	// Email, if set, turns the reminder into an e-mail notification.
	Email string `yaml:"email" toml:"email"`
}

// ShiftConfig adds a code to the built-in catalog or overrides one.
type ShiftConfig struct {
	Token string `yaml:"token" toml:"token"`
	Name  string `yaml:"name" toml:"name"`
	// Kind is one of shift (default), leave, sick, day_off, day_in_lieu.
	Kind string `yaml:"kind,omitempty" toml:"kind,omitempty"`
	// Start/End are "HHMM" or "HH:MM". Required for shifts.
	Start       string `yaml:"start,omitempty" toml:"start,omitempty"`
	End         string `yaml:"end,omitempty" toml:"end,omitempty"`
	SummerStart string `yaml:"summer_start,omitempty" toml:"summer_start,omitempty"`
	SummerEnd   string `yaml:"summer_end,omitempty" toml:"summer_end,omitempty"`
	Overnight   bool   `yaml:"overnight,omitempty" toml:"overnight,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	Calendar CalendarConfig `yaml:"calendar" toml:"calendar"`
	Roster   RosterConfig   `yaml:"roster" toml:"roster"`
	Alarm    AlarmConfig    `yaml:"alarm" toml:"alarm"`
	Shifts   []ShiftConfig  `yaml:"shifts" toml:"shifts"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Calendar: CalendarConfig{
			Name:     DefaultCalendarName,
			ProdID:   DefaultProdID,
			Timezone: DefaultTimezone,
		},
		Roster: RosterConfig{
			Sheet:             DefaultSheet,
			HeaderMarker:      DefaultHeaderMarker,
			HeaderSearchRows:  defaultHeaderSearchRows,
			NameSearchColumns: defaultNameSearchColumns,
		},
		Shifts: []ShiftConfig{},
	}
}

// DefaultPath returns the per-user config location, falling back to the
// working directory when no config dir is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "rostercal.yaml"
	}
	return filepath.Join(dir, "rostercal", "config.yaml")
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Calendar.Name == "" {
		c.Calendar.Name = DefaultCalendarName
	}
	if c.Calendar.ProdID == "" {
		c.Calendar.ProdID = DefaultProdID
	}
	if c.Calendar.Timezone == "" {
		c.Calendar.Timezone = DefaultTimezone
	}
	if c.Roster.Sheet == "" {
		c.Roster.Sheet = DefaultSheet
	}
	if c.Roster.HeaderMarker == "" {
		c.Roster.HeaderMarker = DefaultHeaderMarker
	}
	if c.Roster.HeaderSearchRows <= 0 {
		c.Roster.HeaderSearchRows = defaultHeaderSearchRows
	}
	if c.Roster.NameSearchColumns <= 0 {
		c.Roster.NameSearchColumns = defaultNameSearchColumns
	}
	if c.Alarm.LeadMinutes < 0 {
		c.Alarm.LeadMinutes = 0
	}
	c.Roster.Person = strings.TrimSpace(c.Roster.Person)
	c.Alarm.Email = strings.TrimSpace(c.Alarm.Email)
	if c.Shifts == nil {
		c.Shifts = []ShiftConfig{}
	}
}

// applyEnvOverrides lets ROSTERCAL_* variables win over the file.
func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("ROSTERCAL_PERSON")); v != "" {
		c.Roster.Person = v
	}
	if v := strings.TrimSpace(os.Getenv("ROSTERCAL_ALARM_EMAIL")); v != "" {
		c.Alarm.Email = v
	}
}

// Validate checks the parts Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ics.LookupZone(c.Calendar.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("calendar.timezone: %w", err))
	}
	if c.Alarm.Email != "" {
		if err := ics.ValidateEmail(c.Alarm.Email); err != nil {
			errs = append(errs, fmt.Errorf("alarm.email: %w", err))
		}
	}
	if _, err := c.Catalog(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Catalog returns the built-in shift catalog extended by c.Shifts.
func (c *Config) Catalog() (*roster.Catalog, error) {
	specs := make([]roster.ShiftSpec, 0, len(c.Shifts))
	var errs []error
	for i, sc := range c.Shifts {
		spec, err := sc.Spec()
		if err != nil {
			errs = append(errs, fmt.Errorf("shifts[%d]: %w", i, err))
			continue
		}
		specs = append(specs, spec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return roster.DefaultCatalog().With(specs...), nil
}

// Spec converts a configured shift into a catalog entry.
func (s ShiftConfig) Spec() (roster.ShiftSpec, error) {
	token := strings.TrimSpace(s.Token)
	if token == "" {
		return roster.ShiftSpec{}, errors.New("token is empty")
	}
	kind, err := roster.ParseKind(s.Kind)
	if err != nil {
		return roster.ShiftSpec{}, err
	}
	if kind == roster.KindFreeText {
		return roster.ShiftSpec{}, fmt.Errorf("token %s: kind free_text cannot be configured", token)
	}
	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = token
		if kind == roster.KindShift {
			name += " shift"
		}
	}
	spec := roster.ShiftSpec{Token: token, Name: name, Kind: kind, Overnight: s.Overnight}
	if kind != roster.KindShift {
		return spec, nil
	}

	if spec.Span, err = parseSpan(s.Start, s.End); err != nil {
		return roster.ShiftSpec{}, fmt.Errorf("token %s: %w", token, err)
	}
	// An end at or before the start is read as the next morning.
	if spec.Span.CrossesMidnight() {
		spec.Overnight = true
	}
	if s.SummerStart != "" || s.SummerEnd != "" {
		start, end := s.SummerStart, s.SummerEnd
		if start == "" {
			start = s.Start
		}
		if end == "" {
			end = s.End
		}
		summer, err := parseSpan(start, end)
		if err != nil {
			return roster.ShiftSpec{}, fmt.Errorf("token %s summer: %w", token, err)
		}
		if summer.CrossesMidnight() != spec.Span.CrossesMidnight() {
			return roster.ShiftSpec{}, fmt.Errorf("token %s: summer span %s and span %s disagree about crossing midnight", token, summer, spec.Span)
		}
		spec.Summer = &summer
	}
	return spec, nil
}

func parseSpan(start, end string) (roster.Span, error) {
	s, err := roster.ParseClock(start)
	if err != nil {
		return roster.Span{}, fmt.Errorf("start: %w", err)
	}
	e, err := roster.ParseClock(end)
	if err != nil {
		return roster.Span{}, fmt.Errorf("end: %w", err)
	}
	return roster.Span{Start: s, End: e}, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// Marshal encodes cfg in the format implied by path's extension.
func Marshal(path string, cfg *Config) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(cfg)
	}
	return yaml.Marshal(cfg)
}

// Load loads configuration from the given path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - decode it (YAML or TOML by extension)
//   - normalize defaults
//
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				cfg.applyEnvOverrides()
				return cfg, err
			}
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := unmarshal(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg by extension.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := Marshal(path, cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".rostercal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
