package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/interop-labs/modreg/internal/artifact"
	"github.com/interop-labs/modreg/internal/branding"
)

const (
	fileName = ".modreg"
	fileType = "yaml"
)

// Keys understood by the settings file.
const (
	KeyLockFile         = "lock_file"
	KeyManifestFile     = "manifest_file"
	KeyOutput           = "output"
	KeyFormat           = "format"
	KeyNamespace        = "namespace"
	KeyFactoryKey       = "factory_key"
	KeyIncludeDev       = "include_dev"
	KeyInstallerPackage = "installer_package"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyWatchDebounce    = "watch_debounce"
)

// Config holds the resolved settings for one project.
type Config struct {
	ProjectDir       string        `mapstructure:"-"`
	LockFile         string        `mapstructure:"lock_file"`
	ManifestFile     string        `mapstructure:"manifest_file"`
	Output           string        `mapstructure:"output"`
	Format           string        `mapstructure:"format"`
	Namespace        string        `mapstructure:"namespace"`
	FactoryKey       string        `mapstructure:"factory_key"`
	IncludeDev       bool          `mapstructure:"include_dev"`
	InstallerPackage string        `mapstructure:"installer_package"`
	LogLevel         string        `mapstructure:"log_level"`
	LogFormat        string        `mapstructure:"log_format"`
	WatchDebounce    time.Duration `mapstructure:"watch_debounce"`
}

var defaults = map[string]any{
	KeyLockFile:         "composer.lock",
	KeyManifestFile:     "composer.json",
	KeyOutput:           "modules.php",
	KeyFormat:           "php",
	KeyNamespace:        "framework-interop",
	KeyFactoryKey:       "module-factory",
	KeyIncludeDev:       true,
	KeyInstallerPackage: "interop/module-installer",
	KeyLogLevel:         "info",
	KeyLogFormat:        "text",
	KeyWatchDebounce:    "250ms",
}

// Keys returns every known settings key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Default returns the built-in value of key as a string, or "" for an
// unknown key.
func Default(key string) string {
	return cast.ToString(defaults[key])
}

// FilePath returns the settings file path for a project directory.
func FilePath(projectDir string) string {
	return filepath.Join(projectDir, fileName+"."+fileType)
}

// newViper returns a viper instance reading the project's settings file and
// the environment.
func newViper(projectDir string) *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.AddConfigPath(projectDir)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings for projectDir. A missing settings file is not an error.
// overrides (typically changed command-line flags) win over file and
// environment values.
func Load(projectDir string, overrides map[string]any) (*Config, error) {
	v := newViper(projectDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", FilePath(projectDir), err)
		}
	}
	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc()))
	if err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	cfg.ProjectDir = projectDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the generator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	for key, val := range map[string]string{
		KeyLockFile:     c.LockFile,
		KeyManifestFile: c.ManifestFile,
		KeyOutput:       c.Output,
		KeyNamespace:    c.Namespace,
		KeyFactoryKey:   c.FactoryKey,
	} {
		if strings.TrimSpace(val) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", key))
		}
	}
	if formats := artifact.Formats(); !slices.Contains(formats, strings.ToLower(c.Format)) {
		errs = append(errs, fmt.Errorf("format %q is not supported (%s)", c.Format, strings.Join(formats, ", ")))
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("watch_debounce must not be negative"))
	}
	// Sorted for stable error text; map iteration above is random.
	slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })
	return errors.Join(errs...)
}

// OutputPath returns the artifact path, resolved against the project directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(c.ProjectDir, c.Output)
}

// Get returns the effective value of key for projectDir as a string.
func Get(projectDir, key string) (string, error) {
	v := newViper(projectDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("reading %s: %w", FilePath(projectDir), err)
		}
	}
	return v.GetString(key), nil
}

// Set writes a key-value pair to the project's settings file, creating it if
// needed.
func Set(projectDir, key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}

	configFile := FilePath(projectDir)

	// Only the file is read here so environment overrides are not persisted.
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType(fileType)
	if _, err := os.Stat(configFile); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", configFile, err)
		}
	}

	v.Set(key, value)
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
