package config

import (
	"strings"
	"time"
)

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Filters FilterConfig  `mapstructure:"filters"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// APIConfig holds Agro API connection details
type APIConfig struct {
	Key             string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	LenientDecoding bool          `mapstructure:"lenient_decoding"`
}

// FilterConfig maps filter names to expressions, so commands can refer to a filter by name
type FilterConfig map[string]string

// Expression returns the named filter, or nameOrExpr itself when no filter has that name.
// Names are matched case-insensitively since viper lowercases map keys.
func (f FilterConfig) Expression(nameOrExpr string) string {
	if expr, ok := f[strings.ToLower(nameOrExpr)]; ok {
		return expr
	}
	return nameOrExpr
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// OutputConfig controls how commands print results
type OutputConfig struct {
	Format string `mapstructure:"format"`
}
