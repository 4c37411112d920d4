package display

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorSystem handles color application and terminal detection
type ColorSystem interface {
	Colorize(text string, color Color) string
	Sprintf(color Color, format string, args ...interface{}) string
	IsColorSupported() bool
}

// colorSystem implements ColorSystem interface
type colorSystem struct {
	colorSupported bool
	colorMap       map[Color]*color.Color
}

// NewColorSystem creates a color system; colors are used only when enabled
// is true and the writer is a color-capable terminal
func NewColorSystem(enabled bool, w io.Writer) ColorSystem {
	return newColorSystem(enabled && DetectColorSupport(w))
}

func newColorSystem(supported bool) *colorSystem {
	cs := &colorSystem{
		colorSupported: supported,
		colorMap: map[Color]*color.Color{
			ColorReset:  color.New(color.Reset),
			ColorRed:    color.New(color.FgRed),
			ColorGreen:  color.New(color.FgGreen),
			ColorYellow: color.New(color.FgYellow),
			ColorBlue:   color.New(color.FgBlue),
			ColorCyan:   color.New(color.FgCyan),
			ColorBold:   color.New(color.Bold),
		},
	}

	// fatih/color decides from os.Stdout by default; our writer may differ
	for _, c := range cs.colorMap {
		if supported {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return cs
}

// DetectColorSupport checks if w is a terminal that renders colors
func DetectColorSupport(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}

	// NO_COLOR and TERM=dumb
	if termenv.EnvNoColor() || os.Getenv("TERM") == "dumb" {
		return false
	}

	return termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
}

// Colorize applies color to text if color is supported
func (cs *colorSystem) Colorize(text string, clr Color) string {
	if !cs.colorSupported {
		return text
	}

	if c, exists := cs.colorMap[clr]; exists {
		return c.Sprint(text)
	}

	return text
}

// Sprintf formats text with color using format string
func (cs *colorSystem) Sprintf(clr Color, format string, args ...interface{}) string {
	return cs.Colorize(fmt.Sprintf(format, args...), clr)
}

// IsColorSupported returns whether colors are supported
func (cs *colorSystem) IsColorSupported() bool {
	return cs.colorSupported
}
