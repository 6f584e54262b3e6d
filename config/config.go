// Package config loads and validates the photoframe configuration contract
// (spec §6.1). The loader is adapted from the teacher's singleton
// config.GetConfig pattern, generalized to plain constructor-style loading
// since the photo-frame core has no settings UI to hand a live singleton to.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dixieflatline76/photoframe/internal/overlay"
)

// Config is the single configuration record recognized by the engine.
// Unknown top-level keys are rejected by Load (spec §6.1).
type Config struct {
	PhotoLibraryPath           string              `yaml:"photo-library-path"`
	ControlSocketPath          string              `yaml:"control-socket-path"`
	GlobalPhotoSettings        GlobalPhotoSettings `yaml:"global-photo-settings"`
	ViewerPreloadCount         int                 `yaml:"viewer-preload-count"`
	LoaderMaxConcurrentDecodes int                 `yaml:"loader-max-concurrent-decodes"`
	StartupShuffleSeed         *uint64             `yaml:"startup-shuffle-seed"`
	Playlist                   PlaylistConfig      `yaml:"playlist"`
	Matting                    MattingConfig       `yaml:"matting"`
	PhotoEffect                PhotoEffectConfig   `yaml:"photo-effect"`
	Transition                 TransitionConfig    `yaml:"transition"`
	GreetingScreen             OverlayConfig       `yaml:"greeting-screen"`
	SleepScreen                OverlayConfig       `yaml:"sleep-screen"`
	AwakeSchedule              *AwakeSchedule      `yaml:"awake-schedule"`
}

var knownTopLevelKeys = map[string]bool{
	"photo-library-path":             true,
	"control-socket-path":            true,
	"global-photo-settings":          true,
	"viewer-preload-count":           true,
	"loader-max-concurrent-decodes":  true,
	"startup-shuffle-seed":           true,
	"playlist":                       true,
	"matting":                        true,
	"photo-effect":                   true,
	"transition":                     true,
	"greeting-screen":                true,
	"sleep-screen":                   true,
	"awake-schedule":                 true,
}

// Load reads, decodes, and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML config bytes.
func Parse(data []byte) (*Config, error) {
	if err := rejectUnknownKeys(data); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// rejectUnknownKeys decodes the top-level mapping only, to catch stray keys
// that the typed Config struct would otherwise silently ignore.
func rejectUnknownKeys(data []byte) error {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: decoding: %w", err)
	}
	for key := range raw {
		if !knownTopLevelKeys[key] {
			return fmt.Errorf("config: unrecognized top-level key %q", key)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.GlobalPhotoSettings.Oversample == 0 {
		c.GlobalPhotoSettings.Oversample = 1.0
	}
	if c.GlobalPhotoSettings.DwellMs == 0 {
		c.GlobalPhotoSettings.DwellMs = 2000
	}
	if c.GlobalPhotoSettings.MaxUpscaleFactor == 0 {
		c.GlobalPhotoSettings.MaxUpscaleFactor = 1.0
	}
	if c.ControlSocketPath == "" {
		c.ControlSocketPath = DefaultControlSocketName
	}
	if c.Playlist.NewMultiplicity == 0 {
		c.Playlist.NewMultiplicity = 1
	}
	if c.Playlist.HalfLife == "" {
		c.Playlist.HalfLife = "24h"
	}
	if c.GreetingScreen.Title == "" {
		c.GreetingScreen.Title = "Good Morning"
	}
	if c.SleepScreen.Title == "" {
		c.SleepScreen.Title = "Good Night"
	}
	if c.Matting.MaxUpscaleFactor == 0 {
		c.Matting.MaxUpscaleFactor = 1.0
	}
}

// Validate enforces the constraints tabulated in spec §6.1.
func (c *Config) Validate() error {
	if c.PhotoLibraryPath == "" {
		return fmt.Errorf("photo-library-path is required")
	}
	if c.ControlSocketPath == "" {
		return fmt.Errorf("control-socket-path must not be empty")
	}
	if c.GlobalPhotoSettings.Oversample <= 0 {
		return fmt.Errorf("global-photo-settings.oversample must be > 0")
	}
	if c.GlobalPhotoSettings.DwellMs <= 0 {
		return fmt.Errorf("global-photo-settings.dwell-ms must be > 0")
	}
	if c.GlobalPhotoSettings.MaxUpscaleFactor < 1.0 {
		return fmt.Errorf("global-photo-settings.max-upscale-factor must be >= 1")
	}
	if c.ViewerPreloadCount <= 0 {
		return fmt.Errorf("viewer-preload-count must be > 0")
	}
	if c.LoaderMaxConcurrentDecodes <= 0 {
		return fmt.Errorf("loader-max-concurrent-decodes must be > 0")
	}
	if c.Playlist.NewMultiplicity < 1 {
		return fmt.Errorf("playlist.new-multiplicity must be >= 1")
	}
	halfLife, err := time.ParseDuration(c.Playlist.HalfLife)
	if err != nil {
		return fmt.Errorf("playlist.half-life: %w", err)
	}
	if halfLife <= 0 {
		return fmt.Errorf("playlist.half-life must be > 0")
	}
	if err := validateMatting(c.Matting); err != nil {
		return fmt.Errorf("matting: %w", err)
	}
	if err := validateTransition(c.Transition); err != nil {
		return fmt.Errorf("transition: %w", err)
	}
	if c.AwakeSchedule != nil {
		if err := validateSchedule(c.AwakeSchedule); err != nil {
			return fmt.Errorf("awake-schedule: %w", err)
		}
	}
	if err := overlay.Validate("greeting-screen", c.GreetingScreen.Title, c.GreetingScreen.MinDurationMs); err != nil {
		return err
	}
	if err := overlay.Validate("sleep-screen", c.SleepScreen.Title, 0); err != nil {
		return err
	}
	return nil
}

// HalfLifeDuration returns the parsed, lower-bounded (>= 1s) half-life duration.
func (p PlaylistConfig) HalfLifeDuration() time.Duration {
	d, err := time.ParseDuration(p.HalfLife)
	if err != nil || d < time.Second {
		return time.Second
	}
	return d
}

func validateMatting(m MattingConfig) error {
	// minimum-mat-percentage is clamped at use-time (to [0, 0.45] as a
	// fraction); an out-of-range configured value is not itself a hard error.
	for _, v := range m.Variants {
		switch v.Type {
		case "fixed-color", "blur", "studio", "fixed-image", "":
		default:
			return fmt.Errorf("unknown matting variant type %q", v.Type)
		}
		if v.Type == "fixed-color" && len(v.Colors) == 0 {
			return fmt.Errorf("fixed-color variant requires at least one color")
		}
		if v.Type == "fixed-image" && len(v.Paths) == 0 {
			return fmt.Errorf("fixed-image variant requires at least one path")
		}
	}
	return nil
}

func validateTransition(t TransitionConfig) error {
	for _, v := range t.Variants {
		switch v.Type {
		case "fade", "wipe", "push", "eink", "":
		default:
			return fmt.Errorf("unknown transition variant type %q", v.Type)
		}
		if v.DurationMs <= 0 && v.Type != "" {
			return fmt.Errorf("%s transition requires duration-ms > 0", v.Type)
		}
	}
	return nil
}

func validateSchedule(s *AwakeSchedule) error {
	if s.Timezone == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", s.Timezone, err)
	}
	for _, iv := range s.Intervals {
		if iv.Start == "" || iv.End == "" {
			return fmt.Errorf("interval on %s requires start and end", iv.Day)
		}
	}
	return nil
}
