// Package overlay validates the greeting/sleep overlay contract (spec §1):
// font loading and text shaping are an out-of-scope collaborator, but the
// title and minimum-duration fields that feed it are validated here (the
// subtitle is not checked, and colors are parsed by config's Color
// decoding),
// independent of config so config.Validate can call it without an import
// cycle (config holds the OverlayConfig struct; this package only ever
// sees the already-decoded scalar fields).
package overlay

import "fmt"

// Validate enforces the greeting/sleep overlay contract: name identifies
// the config block in error messages ("greeting-screen" or
// "sleep-screen"), title must be non-empty, and minDurationMs (0 for the
// sleep overlay, which has no minimum-duration gate) must be non-negative.
func Validate(name, title string, minDurationMs int) error {
	if title == "" {
		return fmt.Errorf("overlay: %s.title is required", name)
	}
	if minDurationMs < 0 {
		return fmt.Errorf("overlay: %s.min-duration-ms must be >= 0", name)
	}
	return nil
}
