// Package config provides configuration management for the folder view
// pane: display mode, sort order, column layout, overlay timing, and the
// icon cache budget.
package config

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var defaultConfig embed.FS

// Config holds all pane configuration.
type Config struct {
	Display PaneDisplayConfig `mapstructure:"display"`
	Sort    SortConfig        `mapstructure:"sort"`
	Overlay OverlayConfig     `mapstructure:"overlay"`
	Icons   IconCacheConfig   `mapstructure:"icons"`
	Logging LoggingConfig     `mapstructure:"logging"`
	Window  WindowConfig      `mapstructure:"window"`
}

// PaneDisplayConfig holds layout settings for the item grid.
type PaneDisplayConfig struct {
	// Mode selects the tiling layout ("details", "list", "large-icons").
	Mode string `mapstructure:"mode"`
	// ColumnWidthDip is the default column width in device-independent pixels.
	ColumnWidthDip float64 `mapstructure:"column_width_dip"`
	// RowHeightDip is the row height in device-independent pixels.
	RowHeightDip float64 `mapstructure:"row_height_dip"`
	// ShowHiddenItems includes items with the hidden attribute.
	ShowHiddenItems bool `mapstructure:"show_hidden_items"`
	// ViewportBufferRows extends the layout window beyond the visible area.
	ViewportBufferRows int `mapstructure:"viewport_buffer_rows"`
}

// SortConfig holds the default sort applied to a freshly opened pane.
type SortConfig struct {
	// Field is one of "name", "extension", "time", "size", "attributes".
	Field string `mapstructure:"field"`
	// Descending reverses the comparator.
	Descending bool `mapstructure:"descending"`
}

// OverlayConfig controls busy/error overlay timing.
type OverlayConfig struct {
	// BusyDebounce is how long an operation must run before the busy
	// overlay appears.
	BusyDebounce time.Duration `mapstructure:"busy_debounce"`
	// AnimationTick is the overlay/search-pill animation frame interval.
	AnimationTick time.Duration `mapstructure:"animation_tick"`
}

// IconCacheConfig controls the icon bitmap cache's memory budget.
type IconCacheConfig struct {
	// BudgetBytes is the maximum resident bitmap memory before LRU eviction.
	BudgetBytes int64 `mapstructure:"budget_bytes"`
}

// WindowConfig persists the pane host's last placement.
type WindowConfig struct {
	// State is "normal" or "maximized".
	State  string `mapstructure:"state"`
	Left   int    `mapstructure:"left"`
	Top    int    `mapstructure:"top"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	// DPI is the monitor DPI the bounds were captured at, so restore can
	// rescale on a different monitor.
	DPI int `mapstructure:"dpi"`
}

// LoggingConfig holds logging-related settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `mapstructure:"level"`
	// ToFile enables logging to a file.
	ToFile bool `mapstructure:"to_file"`
	// FilePath is the path to the log file (relative to config dir if not absolute).
	FilePath string `mapstructure:"file_path"`
	// MaxFileSize is the maximum log file size before rotation.
	MaxFileSize string `mapstructure:"max_file_size"`
	// MaxAge is the maximum age of log files in days.
	MaxAge int `mapstructure:"max_age"`
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `mapstructure:"max_backups"`
}

// Manager handles configuration loading and saving.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	viper    *viper.Viper
	filePath string
}

var (
	instance *Manager
	once     sync.Once
)

// GetManager returns the singleton configuration manager instance.
func GetManager() *Manager {
	once.Do(func() {
		instance = &Manager{
			viper: viper.New(),
		}
	})
	return instance
}

// Load loads the configuration from the specified file path.
// If the file doesn't exist, it creates a default configuration.
func (m *Manager) Load(configPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filePath = configPath

	m.viper.SetConfigType("yaml")
	m.setDefaults()

	if configPath != "" {
		m.viper.SetConfigFile(configPath)
		if err := m.viper.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				if err := m.createDefaultConfig(configPath); err != nil {
					return fmt.Errorf("failed to create default config: %w", err)
				}
			} else {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	} else {
		data, err := defaultConfig.ReadFile("config.yaml")
		if err != nil {
			return fmt.Errorf("failed to read embedded config: %w", err)
		}
		if err := m.viper.ReadConfig(newByteReader(data)); err != nil {
			return fmt.Errorf("failed to parse embedded config: %w", err)
		}
	}

	m.config = &Config{}
	if err := m.viper.Unmarshal(m.config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// Save saves the current configuration to the file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.filePath == "" {
		return fmt.Errorf("no config file path set")
	}

	return m.viper.WriteConfig()
}

// SaveAs saves the configuration to a new file.
func (m *Manager) SaveAs(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filePath = path
	m.viper.SetConfigFile(path)
	return m.viper.WriteConfig()
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update applies modifier to the configuration and syncs it back to viper.
func (m *Manager) Update(modifier func(*Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	modifier(m.config)

	m.viper.Set("display", m.config.Display)
	m.viper.Set("sort", m.config.Sort)
	m.viper.Set("overlay", m.config.Overlay)
	m.viper.Set("icons", m.config.Icons)
	m.viper.Set("logging", m.config.Logging)
	m.viper.Set("window", m.config.Window)

	return nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "FolderView"), nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func (m *Manager) setDefaults() {
	m.viper.SetDefault("display.mode", "details")
	m.viper.SetDefault("display.column_width_dip", 240.0)
	m.viper.SetDefault("display.row_height_dip", 20.0)
	m.viper.SetDefault("display.show_hidden_items", false)
	m.viper.SetDefault("display.viewport_buffer_rows", 8)

	m.viper.SetDefault("sort.field", "name")
	m.viper.SetDefault("sort.descending", false)

	m.viper.SetDefault("overlay.busy_debounce", "300ms")
	m.viper.SetDefault("overlay.animation_tick", "16ms")

	m.viper.SetDefault("icons.budget_bytes", 64*1024*1024)

	m.viper.SetDefault("window.state", "normal")
	m.viper.SetDefault("window.left", 100)
	m.viper.SetDefault("window.top", 100)
	m.viper.SetDefault("window.width", 1024)
	m.viper.SetDefault("window.height", 768)
	m.viper.SetDefault("window.dpi", 96)

	m.viper.SetDefault("logging.level", "info")
	m.viper.SetDefault("logging.to_file", true)
	m.viper.SetDefault("logging.file_path", "logs/folderview.log")
	m.viper.SetDefault("logging.max_file_size", "10MB")
	m.viper.SetDefault("logging.max_age", 7)
	m.viper.SetDefault("logging.max_backups", 5)
}

func (m *Manager) createDefaultConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := defaultConfig.ReadFile("config.yaml")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// byteReader implements io.Reader for []byte.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

func (r *byteReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n = copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() []error {
	var errs []error

	validModes := map[string]bool{"details": true, "list": true, "large-icons": true}
	if !validModes[c.Display.Mode] {
		errs = append(errs, fmt.Errorf("invalid display mode: %s", c.Display.Mode))
	}
	if c.Display.ColumnWidthDip <= 0 {
		errs = append(errs, fmt.Errorf("column_width_dip must be positive"))
	}
	if c.Display.RowHeightDip <= 0 {
		errs = append(errs, fmt.Errorf("row_height_dip must be positive"))
	}
	if c.Display.ViewportBufferRows < 0 {
		errs = append(errs, fmt.Errorf("viewport_buffer_rows must not be negative"))
	}

	validSortFields := map[string]bool{
		"name": true, "extension": true, "time": true, "size": true, "attributes": true,
	}
	if !validSortFields[c.Sort.Field] {
		errs = append(errs, fmt.Errorf("invalid sort field: %s", c.Sort.Field))
	}

	if c.Overlay.BusyDebounce <= 0 {
		errs = append(errs, fmt.Errorf("overlay busy_debounce must be positive"))
	}
	if c.Overlay.AnimationTick <= 0 {
		errs = append(errs, fmt.Errorf("overlay animation_tick must be positive"))
	}

	if c.Icons.BudgetBytes <= 0 {
		errs = append(errs, fmt.Errorf("icons budget_bytes must be positive"))
	}

	if c.Window.State != "" && c.Window.State != "normal" && c.Window.State != "maximized" {
		errs = append(errs, fmt.Errorf("invalid window state: %s", c.Window.State))
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.Logging.Level))
	}

	return errs
}
