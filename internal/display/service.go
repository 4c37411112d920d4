package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"experiment-setup/internal/backup"
)

// DisplayService provides centralized status and listing output
type DisplayService interface {
	// Status messages
	Success(message string)
	Warning(message string)
	Error(message string)
	Info(message string)

	// Backup listings
	PrintBackups(descs []backup.Descriptor, format OutputFormat, loc *time.Location) error

	// Configuration
	SetOutput(writer io.Writer)
	GetConfig() *DisplayConfig
	Colors() ColorSystem
}

// OutputFormat represents different output format options
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// SupportedFormats lists the formats accepted by --format
func SupportedFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatJSON, FormatYAML}
}

// ParseOutputFormat accepts a format name case-insensitively; empty means text
func ParseOutputFormat(name string) (OutputFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatText, nil
	}
	for _, f := range SupportedFormats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (use text, json or yaml)", name)
}

// Color represents terminal color options
type Color int

const (
	ColorReset Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorCyan
	ColorBold
)

// ColorTheme defines color scheme for different message types
type ColorTheme struct {
	Success Color
	Warning Color
	Error   Color
	Info    Color
}

// DefaultColorTheme returns the theme used for status lines
func DefaultColorTheme() ColorTheme {
	return ColorTheme{
		Success: ColorGreen,
		Warning: ColorYellow,
		Error:   ColorRed,
		Info:    ColorCyan,
	}
}
