package utils

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

//go:embed configs
var defaultConfig embed.FS

type Config map[string]string

type ConfigManager struct {
	configsPath string
	configs     Config
	configMutex sync.RWMutex
}

// NewConfigManager loads the key=value file at path. An empty path means the
// file in the app config directory. A missing file is created from the
// embedded defaults.
func NewConfigManager(path string) (*ConfigManager, error) {
	if path == "" {
		paths := GetAppPaths("")
		path = filepath.Join(paths.ConfigDir, "configs")
	}

	if err := ensureConfig(path); err != nil {
		return nil, fmt.Errorf("failed to write default config: %w", err)
	}

	configs, err := readConfigs(path)
	if err != nil {
		return nil, err
	}

	return &ConfigManager{
		configsPath: path,
		configs:     configs,
	}, nil
}

func ensureConfig(configPath string) error {
	// If config doesn't exist, create it from embedded default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		data, err := defaultConfig.ReadFile("configs/configs")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return err
		}
		return os.WriteFile(configPath, data, 0644)
	}

	return nil
}

func readConfigs(configsPath string) (Config, error) {
	config := Config{
		"file": configsPath,
	}

	if len(configsPath) == 0 {
		return nil, fmt.Errorf("invalid configs path `%s`", configsPath)
	}

	file, err := os.Open(configsPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)

	for {
		line, err := reader.ReadString('\n')

		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			// check line for '=' delimiter
			if equal := strings.Index(trimmed, "="); equal >= 0 {
				if key := strings.TrimSpace(trimmed[:equal]); len(key) > 0 {
					config[key] = strings.TrimSpace(trimmed[equal+1:])
				}
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return config, nil
}

// Path returns the file the configuration was loaded from
func (cm *ConfigManager) Path() string {
	return cm.configsPath
}

func (cm *ConfigManager) GetConfig(key string) (string, bool) {
	cm.configMutex.RLock()
	defer cm.configMutex.RUnlock()

	value, exists := cm.configs[key]
	return value, exists
}

// GetConfigWithDefault returns the value for key, or defaultValue when the key
// is absent or empty.
func (cm *ConfigManager) GetConfigWithDefault(key string, defaultValue string) string {
	if value, exists := cm.GetConfig(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func (cm *ConfigManager) GetAllConfigs() Config {
	cm.configMutex.RLock()
	defer cm.configMutex.RUnlock()

	// Return a copy to prevent external modification
	configsCopy := make(Config)
	maps.Copy(configsCopy, cm.configs)
	return configsCopy
}

// GetConfigDuration parses a duration string from config with default fallback
func (cm *ConfigManager) GetConfigDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := cm.GetConfigWithDefault(key, defaultValue.String())
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid duration '%s' for key '%s', using default %v\n", valueStr, key, defaultValue)
		return defaultValue
	}
	return duration
}

// GetConfigInt parses an integer from config with validation
func (cm *ConfigManager) GetConfigInt(key string, defaultValue int, min int, max int) int {
	valueStr := cm.GetConfigWithDefault(key, strconv.Itoa(defaultValue))
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid integer '%s' for key '%s', using default %d\n", valueStr, key, defaultValue)
		return defaultValue
	}
	if value < min || value > max {
		fmt.Fprintf(os.Stderr, "Value %d for key '%s' out of range [%d, %d], using default %d\n", value, key, min, max, defaultValue)
		return defaultValue
	}
	return value
}

// GetConfigBool parses a boolean from config with default fallback
func (cm *ConfigManager) GetConfigBool(key string, defaultValue bool) bool {
	valueStr := cm.GetConfigWithDefault(key, strconv.FormatBool(defaultValue))
	valueStr = strings.ToLower(strings.TrimSpace(valueStr))

	switch valueStr {
	case "true", "yes", "1", "on", "enabled":
		return true
	case "false", "no", "0", "off", "disabled":
		return false
	default:
		fmt.Fprintf(os.Stderr, "Invalid boolean '%s' for key '%s', using default %v\n", valueStr, key, defaultValue)
		return defaultValue
	}
}

// SetConfig sets a configuration value at runtime
func (cm *ConfigManager) SetConfig(key string, value interface{}) {
	cm.configMutex.Lock()
	defer cm.configMutex.Unlock()

	var strValue string
	switch v := value.(type) {
	case string:
		strValue = v
	case bool:
		strValue = strconv.FormatBool(v)
	case int:
		strValue = strconv.Itoa(v)
	case time.Duration:
		strValue = v.String()
	default:
		strValue = fmt.Sprintf("%v", v)
	}

	cm.configs[key] = strValue
}

// ResolvePath returns value unchanged when absolute, otherwise joined to dir
func ResolvePath(dir, value string) string {
	if value == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(dir, value)
}
