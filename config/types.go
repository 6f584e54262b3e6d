package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an 8-bit RGB triple. It decodes from a "#rrggbb" YAML scalar,
// matching the hex-literal color fields the viewer's overlays and matting
// variants accept.
type Color struct {
	R, G, B uint8
}

// UnmarshalYAML accepts "#rrggbb" or "rrggbb".
func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses a "#rrggbb" (or "rrggbb") string into a Color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("config: invalid color %q, want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("config: invalid color %q: %w", s, err)
	}
	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// GlobalPhotoSettings holds the cross-cutting photo presentation knobs.
type GlobalPhotoSettings struct {
	Oversample       float64 `yaml:"oversample"`
	DwellMs          int     `yaml:"dwell-ms"`
	MaxUpscaleFactor float64 `yaml:"max-upscale-factor"`
}

// PlaylistConfig tunes the age-decayed weighting (spec §4.2).
type PlaylistConfig struct {
	NewMultiplicity int    `yaml:"new-multiplicity"`
	HalfLife        string `yaml:"half-life"` // parsed via time.ParseDuration
}

// MattingVariantConfig is one configured matting style. Type selects the
// variant; the remaining fields are interpreted per-variant and may carry
// list-valued fields (Colors, Paths) that expand into multiple canonical
// selection entries (spec §4.8 "Configuration expansion").
type MattingVariantConfig struct {
	Type string `yaml:"type"` // fixed-color | blur | studio | fixed-image

	// fixed-color
	Colors []Color `yaml:"colors"`

	// blur
	Sigma       float64 `yaml:"sigma"`
	SampleScale float64 `yaml:"sample-scale"`

	// studio
	BevelWidthPx float64 `yaml:"bevel-width-px"`
	BevelColor   Color   `yaml:"bevel-color"`
	MatColor     *Color  `yaml:"mat-color"` // nil => "photo-average"

	// fixed-image
	Paths []string `yaml:"paths"`
	Fit   string   `yaml:"fit"` // cover | contain | stretch
}

// MattingConfig is the top-level matting selection block.
type MattingConfig struct {
	MinimumMatPercentage float64                 `yaml:"minimum-mat-percentage"`
	MaxUpscaleFactor     float64                 `yaml:"max-upscale-factor"`
	Policy               string                  `yaml:"policy"`
	Variants             []MattingVariantConfig  `yaml:"variants"`
}

// EffectVariantConfig is one configured photo-effect.
type EffectVariantConfig struct {
	Type   string  `yaml:"type"` // none | grayscale | sepia | vignette | print-simulation
	Amount float64 `yaml:"amount"`
}

// PhotoEffectConfig is the top-level photo-effect selection block.
type PhotoEffectConfig struct {
	Policy   string                 `yaml:"policy"`
	Variants []EffectVariantConfig `yaml:"variants"`
}

// TransitionVariantConfig is one configured transition.
type TransitionVariantConfig struct {
	Type string `yaml:"type"` // fade | wipe | push | eink

	DurationMs int `yaml:"duration-ms"`

	// fade
	ThroughBlack bool `yaml:"through-black"`

	// wipe / push
	Angles    []float64 `yaml:"angles"`
	JitterDeg float64   `yaml:"jitter-deg"`
	Softness  float64   `yaml:"softness"` // wipe only

	// eink
	FlashCount    int     `yaml:"flash-count"`
	RevealPortion float64 `yaml:"reveal-portion"`
	StripeCount   int     `yaml:"stripe-count"`
	FlashColor    Color   `yaml:"flash-color"`
}

// TransitionConfig is the top-level transition selection block.
type TransitionConfig struct {
	Policy   string                   `yaml:"policy"`
	Variants []TransitionVariantConfig `yaml:"variants"`
}

// OverlayConfig validates the greeting/sleep overlay text & colors; the
// actual glyph rendering is an out-of-scope collaborator (spec §1).
type OverlayConfig struct {
	Title           string `yaml:"title"`
	Subtitle        string `yaml:"subtitle"`
	BackgroundColor Color  `yaml:"background-color"`
	TextColor       Color  `yaml:"text-color"`
	MinDurationMs   int    `yaml:"min-duration-ms"` // greeting only
}

// WeeklyInterval is one Awake window within a weekly clock.
type WeeklyInterval struct {
	Day   string `yaml:"day"` // monday .. sunday
	Start string `yaml:"start"` // "HH:MM"
	End   string `yaml:"end"`   // "HH:MM", exclusive; may wrap past midnight if End <= Start
}

// AwakeSchedule is the optional wall-clock sleep/wake schedule (spec §4.6).
type AwakeSchedule struct {
	Timezone        string           `yaml:"timezone"`
	Intervals       []WeeklyInterval `yaml:"intervals"`
	GreetingDelayMs int              `yaml:"greeting-delay-ms"`
}
