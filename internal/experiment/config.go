package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "experiment-setup/internal/errors"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// MaxUserDefinedIDLength matches the width of Experiments.UserDefinedID
const MaxUserDefinedIDLength = 64

// Info describes the experiment row itself
type Info struct {
	UserDefinedID string `toml:"UserDefinedID" yaml:"UserDefinedID"`
	Name          string `toml:"Name" yaml:"Name"`
	Description   string `toml:"Description" yaml:"Description"`
	Owner         string `toml:"Owner" yaml:"Owner"`
	Enabled       *bool  `toml:"Enabled" yaml:"Enabled"`
}

// IsEnabled reports the Enabled flag, which defaults to true when absent
func (i Info) IsEnabled() bool {
	return i.Enabled == nil || *i.Enabled
}

// Config is an experiment definition as read from a .toml or .yaml file
type Config struct {
	Info       Info                   `toml:"info" yaml:"info"`
	Parameters map[string]interface{} `toml:"parameters" yaml:"parameters"`
}

// Parameter is one experiment parameter in its stored text form
type Parameter struct {
	Name  string
	Value string
}

// Load reads an experiment config, choosing the decoder by file extension
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read experiment file %s", path), err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("file", path)
		}
		return nil, err
	}

	return cfg, nil
}

// Parse decodes an experiment config in the format named by ext (".toml", ".yaml" or ".yml")
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config

	switch strings.ToLower(ext) {
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, apperrors.NewConfigError("invalid TOML experiment file", err)
		}
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, apperrors.NewConfigError("invalid YAML experiment file", err)
		}
	default:
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("unsupported experiment file extension %q (expected .toml, .yaml or .yml)", ext), nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the experiment name and that every parameter is a scalar
func (c *Config) Validate() error {
	var errs []error

	id := strings.TrimSpace(c.Info.UserDefinedID)
	switch {
	case id == "":
		errs = append(errs, errors.New("info.UserDefinedID is required"))
	case len(id) > MaxUserDefinedIDLength:
		errs = append(errs, fmt.Errorf("info.UserDefinedID must be at most %d characters", MaxUserDefinedIDLength))
	}

	for _, name := range c.parameterNames() {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("parameter names must not be empty"))
			continue
		}
		if _, err := ParameterText(c.Parameters[name]); err != nil {
			errs = append(errs, fmt.Errorf("parameter %q: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return apperrors.NewConfigError("invalid experiment configuration", errors.Join(errs...))
	}

	return nil
}

// Name returns the experiment's UserDefinedID
func (c *Config) Name() string {
	return strings.TrimSpace(c.Info.UserDefinedID)
}

// StoredParameters returns the parameters sorted by name with their values in text form
func (c *Config) StoredParameters() ([]Parameter, error) {
	names := c.parameterNames()
	params := make([]Parameter, 0, len(names))

	for _, name := range names {
		text, err := ParameterText(c.Parameters[name])
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("parameter %q", name), err)
		}
		params = append(params, Parameter{Name: name, Value: text})
	}

	return params, nil
}

func (c *Config) parameterNames() []string {
	names := make([]string, 0, len(c.Parameters))
	for name := range c.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterText converts a scalar parameter value to the text stored in ParamValueTxt.
// Booleans become 1 or 0 and numbers use their shortest decimal form.
func ParameterText(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", errors.New("value is empty")
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("value %v is not a finite number", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case toml.LocalDate:
		return v.String(), nil
	case toml.LocalDateTime:
		return v.String(), nil
	case toml.LocalTime:
		return v.String(), nil
	case map[string]interface{}, []interface{}:
		return "", errors.New("nested tables and arrays are not supported")
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}
