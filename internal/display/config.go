package display

import (
	"io"
	"os"
)

// DisplayConfig holds configuration for terminal output
type DisplayConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled" yaml:"color_enabled"`
	QuietMode    bool `mapstructure:"quiet" yaml:"quiet"`

	// Writer receives listings and status lines; ErrWriter receives errors
	Writer    io.Writer `mapstructure:"-" yaml:"-"`
	ErrWriter io.Writer `mapstructure:"-" yaml:"-"`
}

// DefaultDisplayConfig returns a default display configuration
func DefaultDisplayConfig() *DisplayConfig {
	return &DisplayConfig{
		ColorEnabled: true,
		Writer:       os.Stdout,
		ErrWriter:    os.Stderr,
	}
}

// SetDefaults fills unset writers
func (dc *DisplayConfig) SetDefaults() {
	if dc.Writer == nil {
		dc.Writer = os.Stdout
	}
	if dc.ErrWriter == nil {
		dc.ErrWriter = os.Stderr
	}
}
