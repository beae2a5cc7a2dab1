// Package config provides maze configuration management for Tank Battle.
//
// The config package handles:
//   - Loading maze configurations from JSON or YAML files
//   - Caching loaded configurations by id
//   - Default configuration management
//   - Configuration discovery, listing and saving
//
// Configuration Format:
//
// Mazes are stored as JSON (.json) or YAML (.yaml, .yml) files in the configs
// directory. The file name without extension is the config id used when
// creating sessions. Each configuration defines:
//   - Grid dimensions and a layout of '0' (empty), '1' (brick) and '2' (steel)
//   - Optional spawn positions and facings per player
//   - Optional tick interval and a 180° symmetry requirement
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("crossfire")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When no classic file exists the first valid file becomes the default, and
// with no valid files at all the built-in classic maze is used.
package config
