package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RECONCILE_LOG_LEVEL.
const EnvPrefix = "RECONCILE"

// Config holds the declarative setup of a reconcile session.
type Config struct {
	// Log configures the zap logger built by NewLogger.
	Log LogConfig `mapstructure:"log"`
	// Schema locates the JSON Schema handed to the validator.
	Schema SchemaConfig `mapstructure:"schema"`
	// Document identifies the reconciled document in activity events.
	Document DocumentConfig `mapstructure:"document"`
	// Sort lists the sort handlers in registration order.
	Sort []SortHandlerConfig `mapstructure:"sort"`
	// Merge lists the merge handlers in registration order.
	Merge []MergeHandlerConfig `mapstructure:"merge"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level" default:"info"`
	Format string `mapstructure:"format" default:"json"`
}

// SchemaConfig points at a schema document.
type SchemaConfig struct {
	Path string `mapstructure:"path" default:""`
}

// DocumentConfig carries document level settings.
type DocumentConfig struct {
	ID string `mapstructure:"id" default:""`
	// InPlace writes annotation keys into the target tree.
	InPlace bool `mapstructure:"in_place" default:"false"`
}

// HandlerConfig is the part shared by sort and merge handler entries.
type HandlerConfig struct {
	Name string `mapstructure:"name"`
	// Engine is one of the engines reported by reconcile.Engines; empty
	// means regex.
	Engine string `mapstructure:"engine"`
	Search string `mapstructure:"search"`
	// Callback names an entry of the CallbackRegistry passed to Build.
	Callback string   `mapstructure:"callback"`
	Observe  []string `mapstructure:"observe"`
	Ignore   []string `mapstructure:"ignore"`
}

// SortHandlerConfig declares a sort handler.
type SortHandlerConfig struct {
	HandlerConfig   `mapstructure:",squash"`
	ItemSignature   string `mapstructure:"item_signature"`
	ParentSignature string `mapstructure:"parent_signature"`
}

// MergeHandlerConfig declares a merge handler.
type MergeHandlerConfig struct {
	HandlerConfig   `mapstructure:",squash"`
	ObjectSignature string `mapstructure:"object_signature"`
}

// Load reads the configuration file at path (YAML or JSON, picked by
// extension) and applies environment overrides. A .env file next to the
// configuration file, or in the working directory when path is empty, is
// loaded first when present.
func Load(path string) (*Config, error) {
	envPath := ".env"
	if path != "" {
		envPath = filepath.Join(filepath.Dir(path), ".env")
	}
	// Missing .env files are expected outside development.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks handler entries for missing fields and duplicate names.
func (c *Config) Validate() error {
	var errs []error
	seen := map[string]bool{}
	check := func(section string, i int, h HandlerConfig) {
		if strings.TrimSpace(h.Search) == "" {
			errs = append(errs, fmt.Errorf("config: %s[%d]: search is required", section, i))
		}
		if h.Name == "" {
			return
		}
		if seen[h.Name] {
			errs = append(errs, fmt.Errorf("config: %s[%d]: duplicate handler name %q", section, i, h.Name))
		}
		seen[h.Name] = true
	}
	for i, h := range c.Sort {
		check("sort", i, h.HandlerConfig)
	}
	for i, h := range c.Merge {
		check("merge", i, h.HandlerConfig)
	}
	return errors.Join(errs...)
}

// bindValues registers every tagged scalar field with viper so AutomaticEnv
// can resolve it, using the default tag as value.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || strings.HasPrefix(tag, ",") {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		case reflect.Slice, reflect.Map:
			// Lists come from the file only.
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
