package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Window size constants
const (
	defaultWidth  = 800
	defaultHeight = 600
	minWidth      = 400
	minHeight     = 300
)

// Sort method constants
const (
	SortAlphabetical = 0 // Case-insensitive path order
	SortModifiedDesc = 1 // Newest modification time first
	SortNatural      = 2 // Natural order (file2 before file10)
)

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

type Config struct {
	WindowWidth     int     `json:"window_width"`
	WindowHeight    int     `json:"window_height"`
	Fullscreen      bool    `json:"fullscreen"`
	SortMethod      int     `json:"sort_method"`
	CacheCapacity   int     `json:"cache_capacity"`
	PanSpeedNormal  float64 `json:"pan_speed_normal"`
	PanSpeedFast    float64 `json:"pan_speed_fast"`
	PanSpeedSlow    float64 `json:"pan_speed_slow"`
	WheelZoomFactor float64 `json:"wheel_zoom_factor"`
	ZoomStepFactor  float64 `json:"zoom_step_factor"`
	PreloadEnabled  bool    `json:"preload_enabled"`
	LoadWorkers     int     `json:"load_workers"`

	Keybindings map[string][]string `json:"keybindings"`
}

// PanSpeeds bundles the configured pan magnitudes for the math layer.
func (c Config) PanSpeeds() PanSpeeds {
	return PanSpeeds{Normal: c.PanSpeedNormal, Fast: c.PanSpeedFast, Slow: c.PanSpeedSlow}
}

func defaultConfig() Config {
	speeds := DefaultPanSpeeds()
	return Config{
		WindowWidth:     defaultWidth,
		WindowHeight:    defaultHeight,
		Fullscreen:      false,
		SortMethod:      SortAlphabetical,
		CacheCapacity:   DefaultViewStateCacheCapacity,
		PanSpeedNormal:  speeds.Normal,
		PanSpeedFast:    speeds.Fast,
		PanSpeedSlow:    speeds.Slow,
		WheelZoomFactor: 1.1,
		ZoomStepFactor:  1.2,
		PreloadEnabled:  true,
		LoadWorkers:     defaultLoadWorkers,
		Keybindings:     GetDefaultKeybindings(),
	}
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "miru.json"
	}
	return filepath.Join(homeDir, ".miru.json")
}

func loadConfig() ConfigLoadResult {
	return loadConfigFromPath(getConfigPath())
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	config := defaultConfig()
	result := ConfigLoadResult{
		Config:   config,
		HasError: false,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		return result
	}

	if err := json.Unmarshal(data, &config); err != nil {
		log.Printf("Warning: Invalid config file %s, using defaults: %v", configPath, err)
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
		return result
	}

	// Validate minimum window size
	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}

	// Validate sort method
	if config.SortMethod < SortAlphabetical || config.SortMethod > SortNatural {
		config.SortMethod = SortAlphabetical
	}

	// Validate cache capacity (minimum 16, stock 1000)
	if config.CacheCapacity < 16 {
		config.CacheCapacity = DefaultViewStateCacheCapacity
	}

	// Validate pan speeds (all strictly positive)
	if config.PanSpeedNormal <= 0 {
		config.PanSpeedNormal = DefaultPanSpeeds().Normal
	}
	if config.PanSpeedFast <= 0 {
		config.PanSpeedFast = DefaultPanSpeeds().Fast
	}
	if config.PanSpeedSlow <= 0 {
		config.PanSpeedSlow = DefaultPanSpeeds().Slow
	}

	// Validate zoom factors (must magnify)
	if config.WheelZoomFactor <= 1.0 {
		config.WheelZoomFactor = 1.1
	}
	if config.ZoomStepFactor <= 1.0 {
		config.ZoomStepFactor = 1.2
	}

	// Validate worker count (minimum 1, maximum 8)
	if config.LoadWorkers < 1 {
		config.LoadWorkers = defaultLoadWorkers
	} else if config.LoadWorkers > 8 {
		config.LoadWorkers = 8
	}

	// Validate keybindings - ensure defaults exist for missing actions
	if config.Keybindings == nil {
		config.Keybindings = GetDefaultKeybindings()
	} else {
		defaults := GetDefaultKeybindings()
		for action, defaultKeys := range defaults {
			if _, exists := config.Keybindings[action]; !exists {
				config.Keybindings[action] = defaultKeys
			}
		}

		if err := validateKeybindings(config.Keybindings); err != nil {
			log.Printf("Warning: Invalid keybindings detected, using defaults: %v", err)
			config.Keybindings = GetDefaultKeybindings()
			result.Status = "Warning"
			result.Warnings = append(result.Warnings, fmt.Sprintf("Keybinding errors: %v", err))
		}
	}

	result.Config = config
	return result
}

func saveConfig(config Config) {
	saveConfigToPath(config, getConfigPath())
}

func saveConfigToPath(config Config, configPath string) {
	// Don't save if size is too small
	if config.WindowWidth < minWidth || config.WindowHeight < minHeight {
		log.Printf("Warning: Not saving config with invalid window size: %dx%d",
			config.WindowWidth, config.WindowHeight)
		return
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		log.Printf("Error: Failed to marshal config: %v", err)
		return
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		log.Printf("Error: Failed to save config to %s: %v", configPath, err)
	}
}
