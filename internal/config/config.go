// Package config loads and serves the pipeline configuration.
// Configuration is a nested YAML document; values are addressed by
// dotted key paths such as "cleaner.min_text_length". Stages read
// their section once at construction time; later Set calls do not
// retroactively apply to constructed stages.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/BaoyingShan0/OpenHydrology/internal/core/domain"
	"github.com/BaoyingShan0/OpenHydrology/internal/logger"
)

// requiredSections must be present in an explicitly supplied config
// file. Built-in defaults cover all of them when no file is given.
var requiredSections = []string{
	"global", "parser", "cleaner", "enhancer", "evaluator", "pipeline",
}

// Config is a viper-backed configuration with dotted key paths.
type Config struct {
	v *viper.Viper
}

// New creates a configuration from the built-in defaults, overlaid
// with the YAML file at path when one is given. A missing or
// malformed file is fatal: the error wraps domain.ErrConfiguration.
func New(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
		}
		for _, section := range requiredSections {
			if !v.IsSet(section) {
				return nil, fmt.Errorf("%w: missing required section %q", domain.ErrConfiguration, section)
			}
		}
		logger.Info("Configuration loaded from %s", path)
	}

	return &Config{v: v}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("global.max_workers", 4)
	v.SetDefault("global.output_dir", "./output")
	v.SetDefault("global.temp_dir", "./temp")

	v.SetDefault("parser.supported_formats", []string{"pdf", "txt", "json", "csv", "md"})
	v.SetDefault("parser.min_text_length", 10)
	v.SetDefault("parser.text_settings.chunk_size", 1000)
	v.SetDefault("parser.text_settings.overlap", 100)

	v.SetDefault("cleaner.enabled", true)
	v.SetDefault("cleaner.min_text_length", 10)
	v.SetDefault("cleaner.remove_duplicates", true)
	v.SetDefault("cleaner.normalize_whitespace", true)
	v.SetDefault("cleaner.remove_special_chars", false)
	v.SetDefault("cleaner.similarity_threshold", 0.85)

	v.SetDefault("enhancer.enabled", true)
	v.SetDefault("enhancer.enable_qa_generation", true)
	v.SetDefault("enhancer.enable_term_extraction", true)
	v.SetDefault("enhancer.enable_knowledge_enrichment", true)
	v.SetDefault("enhancer.max_qa_pairs", 5)

	v.SetDefault("evaluator.enabled", true)
	v.SetDefault("evaluator.quality_metrics",
		[]string{"completeness", "relevance", "consistency", "diversity"})
	v.SetDefault("evaluator.thresholds.min_quality_score", 0.7)
	v.SetDefault("evaluator.thresholds.min_relevance_score", 0.6)

	v.SetDefault("pipeline.batch_size", 100)
	v.SetDefault("pipeline.max_workers", 4)
	v.SetDefault("pipeline.parallel_processing", false)
	v.SetDefault("pipeline.checkpoint_enabled", true)
	v.SetDefault("pipeline.error_handling", "skip")

	v.SetDefault("database.path", "")
}

// Get returns the value at the dotted key path, or def when unset.
func (c *Config) Get(key string, def any) any {
	if !c.v.IsSet(key) {
		return def
	}
	return c.v.Get(key)
}

// Set overrides the value at the dotted key path.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// GetString returns the string at key, empty when unset.
func (c *Config) GetString(key string) string { return c.v.GetString(key) }

// GetInt returns the integer at key, zero when unset.
func (c *Config) GetInt(key string) int { return c.v.GetInt(key) }

// GetBool returns the boolean at key, false when unset.
func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

// GetFloat returns the float at key, zero when unset.
func (c *Config) GetFloat(key string) float64 { return c.v.GetFloat64(key) }

// GetStringSlice returns the string list at key, nil when unset.
func (c *Config) GetStringSlice(key string) []string { return c.v.GetStringSlice(key) }

// Section returns a whole section as a nested map, for configuration
// snapshots in processing records.
func (c *Config) Section(name string) map[string]any {
	return c.v.GetStringMap(name)
}
