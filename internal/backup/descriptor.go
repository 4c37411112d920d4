package backup

import (
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// TimestampLayout is how backup timestamps are rendered and the full form accepted by --start/--end
const TimestampLayout = "2006-01-02T15:04:05"

// DateLayout is the date-only form accepted by --start/--end
const DateLayout = "2006-01-02"

// Layer suffixes that may follow .bak, outermost last
const (
	ExtBackup    = ".bak"
	ExtGzip      = ".gz"
	ExtLZ4       = ".lz4"
	ExtZstd      = ".zst"
	ExtEncrypted = ".enc"
)

var backupExtension = regexp.MustCompile(`\.bak(\.(?:gz|lz4|zst))?(\.enc)?$`)

// Descriptor identifies one backup file in a store
type Descriptor struct {
	Name      string    `json:"filename" yaml:"filename"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Size      int64     `json:"size" yaml:"size"`
}

// IsBackupFile reports whether name carries a backup extension
func IsBackupFile(name string) bool {
	return backupExtension.MatchString(baseName(name))
}

// Stem returns the file name without directory and backup extension.
// Names without a backup extension lose only their last extension.
func Stem(name string) string {
	base := baseName(name)
	if loc := backupExtension.FindStringIndex(base); loc != nil {
		return base[:loc[0]]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Layers returns the encoding suffixes of a backup file in the order they must be removed
func Layers(name string) []string {
	m := backupExtension.FindStringSubmatch(baseName(name))
	if m == nil {
		return nil
	}

	var layers []string
	if m[2] != "" {
		layers = append(layers, m[2])
	}
	if m[1] != "" {
		layers = append(layers, m[1])
	}
	return layers
}

// SortDescriptors orders descriptors by creation time, oldest first, then by name
func SortDescriptors(descs []Descriptor) {
	sort.SliceStable(descs, func(i, j int) bool {
		if !descs[i].CreatedAt.Equal(descs[j].CreatedAt) {
			return descs[i].CreatedAt.Before(descs[j].CreatedAt)
		}
		return descs[i].Name < descs[j].Name
	})
}

// baseName strips directories written with either slash style
func baseName(name string) string {
	return path.Base(strings.ReplaceAll(name, `\`, "/"))
}
