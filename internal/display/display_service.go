package display

import (
	"fmt"
	"io"
	"time"

	"experiment-setup/internal/backup"
)

// displayService implements DisplayService
type displayService struct {
	config      *DisplayConfig
	colorSystem ColorSystem
	theme       ColorTheme
	formatters  *FormatterRegistry
}

// NewDisplayService creates a display service; a nil config uses the defaults
func NewDisplayService(config *DisplayConfig) DisplayService {
	if config == nil {
		config = DefaultDisplayConfig()
	}
	config.SetDefaults()

	return &displayService{
		config:      config,
		colorSystem: NewColorSystem(config.ColorEnabled, config.Writer),
		theme:       DefaultColorTheme(),
		formatters:  NewFormatterRegistry(),
	}
}

// Success prints a success message
func (ds *displayService) Success(message string) {
	if ds.config.QuietMode {
		return
	}
	ds.printStatusMessage(ds.config.Writer, "✓", message, ds.theme.Success)
}

// Warning prints a warning message
func (ds *displayService) Warning(message string) {
	ds.printStatusMessage(ds.config.ErrWriter, "Warning:", message, ds.theme.Warning)
}

// Error prints an error message
func (ds *displayService) Error(message string) {
	ds.printStatusMessage(ds.config.ErrWriter, "Error:", message, ds.theme.Error)
}

// Info prints an info message
func (ds *displayService) Info(message string) {
	if ds.config.QuietMode {
		return
	}
	ds.printStatusMessage(ds.config.Writer, "", message, ds.theme.Info)
}

// PrintBackups renders descriptors with timestamps in loc
func (ds *displayService) PrintBackups(descs []backup.Descriptor, format OutputFormat, loc *time.Location) error {
	formatter, ok := ds.formatters.GetFormatter(format)
	if !ok {
		return fmt.Errorf("unsupported output format %q", format)
	}
	return formatter.FormatBackups(ds.config.Writer, descs, loc)
}

// SetOutput sets the output writer
func (ds *displayService) SetOutput(writer io.Writer) {
	ds.config.Writer = writer
}

// GetConfig returns the current configuration
func (ds *displayService) GetConfig() *DisplayConfig {
	return ds.config
}

// Colors returns the color system bound to the output writer
func (ds *displayService) Colors() ColorSystem {
	return ds.colorSystem
}

func (ds *displayService) printStatusMessage(w io.Writer, prefix, message string, color Color) {
	if prefix == "" {
		fmt.Fprintln(w, message)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ds.colorSystem.Colorize(prefix, color), message)
}
