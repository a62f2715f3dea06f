// Package config loads the assistant configuration from JSONC files and
// the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/pairprog-ai/pairprog/pkg/types"
)

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.config/pairprog/pairprog.json[c])
// 2. Project config (<directory>/pairprog.json[c], <directory>/.pairprog/)
// 3. PAIRPROG_CONFIG file
// 4. Environment variables
func Load(directory string) (*types.Config, error) {
	config := &types.Config{}

	loaded := make(map[string]bool)
	loadOnce := func(path, baseDir string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config, baseDir) == nil {
			loaded[absPath] = true
		}
	}

	globalDir := globalConfigDir()
	loadOnce(filepath.Join(globalDir, "pairprog.json"), globalDir)
	loadOnce(filepath.Join(globalDir, "pairprog.jsonc"), globalDir)

	if directory != "" {
		projectDir := filepath.Join(directory, ".pairprog")
		loadOnce(filepath.Join(directory, "pairprog.json"), directory)
		loadOnce(filepath.Join(directory, "pairprog.jsonc"), directory)
		loadOnce(filepath.Join(projectDir, "pairprog.json"), projectDir)
		loadOnce(filepath.Join(projectDir, "pairprog.jsonc"), projectDir)
	}

	if configPath := os.Getenv("PAIRPROG_CONFIG"); configPath != "" {
		loadOnce(configPath, filepath.Dir(configPath))
	}

	applyEnvOverrides(config)

	if config.WorkDir == "" {
		config.WorkDir = directory
	}
	return config, nil
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config, baseDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip
	}

	// Strip JSONC comments using tidwall/jsonc
	data = jsonc.ToJSON(data)

	data = interpolate(data, baseDir)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	envPattern := regexp.MustCompile(`\{env:([^}]+)\}`)
	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})

	filePattern := regexp.MustCompile(`\{file:([^}]+)\}`)
	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		filePath := filePattern.FindStringSubmatch(match)[1]

		if strings.HasPrefix(filePath, "~/") {
			filePath = filepath.Join(os.Getenv("HOME"), filePath[2:])
		} else if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(baseDir, filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return match // Keep original if file not found
		}

		// Escape for JSON string
		escaped := strings.ReplaceAll(string(content), "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		escaped = strings.ReplaceAll(escaped, "\n", "\\n")
		escaped = strings.ReplaceAll(escaped, "\r", "\\r")
		escaped = strings.ReplaceAll(escaped, "\t", "\\t")

		return strings.TrimSpace(escaped)
	})

	return []byte(str)
}

// mergeConfig merges source config into target. Later sources win per
// field.
func mergeConfig(target, source *types.Config) {
	if source.WorkDir != "" {
		target.WorkDir = source.WorkDir
	}
	if source.Log.Level != "" {
		target.Log.Level = source.Log.Level
	}
	if source.Log.Pretty {
		target.Log.Pretty = true
	}

	if source.Stores.Bucket != "" {
		target.Stores.Bucket = source.Stores.Bucket
	}
	if source.Stores.Path != "" {
		target.Stores.Path = source.Stores.Path
	}
	if source.Stores.Fast.Addr != "" {
		target.Stores.Fast = source.Stores.Fast
	}
	if source.Stores.Durable.Endpoint != "" {
		target.Stores.Durable = source.Stores.Durable
	}

	if source.Search.URL != "" {
		target.Search = source.Search
	}

	if source.Provider.ID != "" {
		target.Provider.ID = source.Provider.ID
	}
	if source.Provider.Model != "" {
		target.Provider.Model = source.Provider.Model
	}
	if source.Provider.APIKey != "" {
		target.Provider.APIKey = source.Provider.APIKey
	}
	if source.Provider.BaseURL != "" {
		target.Provider.BaseURL = source.Provider.BaseURL
	}
	if source.Provider.MaxTokens != 0 {
		target.Provider.MaxTokens = source.Provider.MaxTokens
	}

	if source.Limits.MaxAutoContinue != 0 {
		target.Limits.MaxAutoContinue = source.Limits.MaxAutoContinue
	}
	if source.Limits.TokenBudget != 0 {
		target.Limits.TokenBudget = source.Limits.TokenBudget
	}
}

// applyEnvOverrides applies environment variable overrides, the highest
// priority source.
func applyEnvOverrides(config *types.Config) {
	if v := os.Getenv("PAIRPROG_MODEL"); v != "" {
		config.Provider.Model = v
	}
	if v := os.Getenv("PAIRPROG_PROVIDER"); v != "" {
		config.Provider.ID = v
	}
	if v := os.Getenv("PAIRPROG_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("PAIRPROG_REDIS_ADDR"); v != "" {
		config.Stores.Fast.Addr = v
	}
	if v := os.Getenv("PAIRPROG_S3_ENDPOINT"); v != "" {
		config.Stores.Durable.Endpoint = v
	}
	if v := os.Getenv("PAIRPROG_TYPESENSE_URL"); v != "" {
		config.Search.URL = v
	}
	if v := os.Getenv("PAIRPROG_MAX_AUTO_CONTINUE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Limits.MaxAutoContinue = n
		}
	}
}

// globalConfigDir returns the global config directory, honoring
// PAIRPROG_CONFIG_DIR and falling back to XDG conventions.
func globalConfigDir() string {
	if dir := os.Getenv("PAIRPROG_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pairprog")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "pairprog")
}

// Save writes the configuration to a file.
func Save(config *types.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
