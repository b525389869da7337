package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"listview/internal/listing"
	"listview/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds resolved CLI configuration.
type Config struct {
	ConfigDir              string
	ConfigPath             string
	DBPath                 string
	LogFile                string
	LogLevel               string
	NameCellClass          string
	StatusTableFromControl bool
	Classes                model.Classes
}

// Flags are the command-line overrides for Config.
type Flags struct {
	ConfigPath  string
	DBPath      string
	LogLevel    string
	NameCell    string
	NameCellSet bool
}

// fileConfig is the on-disk YAML shape. Pointers tell unset from empty.
type fileConfig struct {
	DB                     string        `yaml:"db,omitempty"`
	NameCellClass          *string       `yaml:"name_cell_class,omitempty"`
	StatusTableFromControl *bool         `yaml:"status_table_from_control,omitempty"`
	LogFile                string        `yaml:"log_file,omitempty"`
	LogLevel               string        `yaml:"log_level,omitempty"`
	Classes                model.Classes `yaml:"classes"`
}

// LoadConfig resolves configuration from flags, environment, the config file
// and defaults, in that order of precedence.
func LoadConfig(flags Flags) (*Config, error) {
	// Load .env files first so env-based defaults work.
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	configDir, err := defaultConfigDir()
	if err != nil {
		return nil, err
	}

	config := &Config{
		ConfigDir:              configDir,
		ConfigPath:             filepath.Join(configDir, "config.yaml"),
		DBPath:                 filepath.Join(configDir, "listview.db"),
		LogFile:                filepath.Join(configDir, "listview.log"),
		LogLevel:               "info",
		NameCellClass:          listing.DefaultOptions().NameCellClass,
		StatusTableFromControl: listing.DefaultOptions().StatusTableFromControl,
		Classes:                model.DefaultClasses(),
	}

	if v := os.Getenv("LISTVIEW_CONFIG"); v != "" {
		config.ConfigPath = v
	}
	if flags.ConfigPath != "" {
		config.ConfigPath = flags.ConfigPath
	}
	config.ConfigPath = expandHome(config.ConfigPath)

	fc, err := readConfigFile(config.ConfigPath)
	if err != nil {
		return nil, err
	}
	if fc.DB != "" {
		config.DBPath = fc.DB
	}
	if fc.NameCellClass != nil {
		config.NameCellClass = *fc.NameCellClass
	}
	if fc.StatusTableFromControl != nil {
		config.StatusTableFromControl = *fc.StatusTableFromControl
	}
	if fc.LogFile != "" {
		config.LogFile = fc.LogFile
	}
	if fc.LogLevel != "" {
		config.LogLevel = fc.LogLevel
	}
	config.Classes = fc.Classes.WithDefaults()

	if v := os.Getenv("LISTVIEW_DB"); v != "" {
		config.DBPath = v
	}
	if v := os.Getenv("LISTVIEW_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}

	if flags.DBPath != "" {
		config.DBPath = flags.DBPath
	}
	if flags.LogLevel != "" {
		config.LogLevel = flags.LogLevel
	}
	if flags.NameCellSet {
		config.NameCellClass = flags.NameCell
	}

	config.DBPath = expandHome(config.DBPath)
	config.LogFile = expandHome(config.LogFile)

	if _, err := parseLevel(config.LogLevel); err != nil {
		return nil, err
	}
	return config, nil
}

// ControllerOptions turns the configuration into listing controller options.
func (c *Config) ControllerOptions() listing.Options {
	return listing.Options{
		NameCellClass:          c.NameCellClass,
		StatusTableFromControl: c.StatusTableFromControl,
		Classes:                c.Classes,
	}
}

func readConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return fc, nil
}

// writeDefaultConfig writes a config file holding the built-in defaults.
func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := listing.DefaultOptions()
	nameCell := defaults.NameCellClass
	statusFromControl := defaults.StatusTableFromControl
	data, err := yaml.Marshal(fileConfig{
		NameCellClass:          &nameCell,
		StatusTableFromControl: &statusFromControl,
		LogLevel:               "info",
		Classes:                model.DefaultClasses(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func defaultConfigDir() (string, error) {
	if v := os.Getenv("LISTVIEW_HOME"); v != "" {
		return expandHome(v), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".listview"), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}

		value = strings.Trim(value, `"'`)
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
