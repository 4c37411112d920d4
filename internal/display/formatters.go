package display

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"experiment-setup/internal/backup"

	"gopkg.in/yaml.v3"
)

// BackupFormatter renders a backup listing in one output format
type BackupFormatter interface {
	FormatBackups(w io.Writer, descs []backup.Descriptor, loc *time.Location) error
}

// backupRecord is the structured form of one listing entry
type backupRecord struct {
	Filename  string `json:"filename" yaml:"filename"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Size      int64  `json:"size" yaml:"size"`
}

func toRecords(descs []backup.Descriptor, loc *time.Location) []backupRecord {
	records := make([]backupRecord, 0, len(descs))
	for _, d := range descs {
		records = append(records, backupRecord{
			Filename:  d.Name,
			CreatedAt: FormatTimestamp(d.CreatedAt, loc),
			Size:      d.Size,
		})
	}
	return records
}

// FormatTimestamp renders t in loc using the backup timestamp layout.
// A nil loc means local time.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(backup.TimestampLayout)
}

// TextFormatter prints one "<filename>\t<timestamp>" line per backup
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// FormatBackups writes the tab separated listing
func (f *TextFormatter) FormatBackups(w io.Writer, descs []backup.Descriptor, loc *time.Location) error {
	for _, d := range descs {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", d.Name, FormatTimestamp(d.CreatedAt, loc)); err != nil {
			return fmt.Errorf("failed to write backup listing: %w", err)
		}
	}
	return nil
}

// JSONFormatter implements BackupFormatter for JSON output
type JSONFormatter struct {
	indent string
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		indent: "  ",
	}
}

// FormatBackups writes the listing as a JSON array
func (f *JSONFormatter) FormatBackups(w io.Writer, descs []backup.Descriptor, loc *time.Location) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.indent)
	if err := enc.Encode(toRecords(descs, loc)); err != nil {
		return fmt.Errorf("failed to marshal backups to JSON: %w", err)
	}
	return nil
}

// YAMLFormatter implements BackupFormatter for YAML output
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// FormatBackups writes the listing as a YAML sequence
func (f *YAMLFormatter) FormatBackups(w io.Writer, descs []backup.Descriptor, loc *time.Location) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toRecords(descs, loc)); err != nil {
		return fmt.Errorf("failed to marshal backups to YAML: %w", err)
	}
	return enc.Close()
}

// FormatterRegistry manages the available formatters
type FormatterRegistry struct {
	formatters map[OutputFormat]BackupFormatter
}

// NewFormatterRegistry creates a registry with the built-in formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[OutputFormat]BackupFormatter),
	}

	registry.Register(FormatText, NewTextFormatter())
	registry.Register(FormatJSON, NewJSONFormatter())
	registry.Register(FormatYAML, NewYAMLFormatter())

	return registry
}

// Register adds a formatter to the registry
func (r *FormatterRegistry) Register(format OutputFormat, formatter BackupFormatter) {
	r.formatters[format] = formatter
}

// GetFormatter retrieves a formatter by format type
func (r *FormatterRegistry) GetFormatter(format OutputFormat) (BackupFormatter, bool) {
	formatter, exists := r.formatters[format]
	return formatter, exists
}
