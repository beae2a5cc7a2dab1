// Command validate checks maze configuration files (JSON or YAML). It checks:
//   - File syntax and required fields
//   - Grid dimensions and allowed characters (0, 1, 2)
//   - Spawn positions and facings
//   - 180° symmetry when the maze requires it
//   - Connectivity: each tank can reach the other once destructible walls are shot away
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tank-battle/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

func formatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// validateConfig loads and validates a single maze file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	format := formatOf(filePath)
	config, err := engine.ParseGameConfig(data, format)
	if err != nil {
		result.fail("Invalid %s: %v", strings.ToUpper(format), err)
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	connectivity := validateConnectivity(config)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)
	if !result.Valid {
		return result
	}

	state := engine.InitGameStateFromConfig(config)
	p1, p2 := config.SpawnFor(engine.Player1), config.SpawnFor(engine.Player2)

	result.info("Name: %s", config.Name)
	result.info("Grid: %dx%d", config.Rows, config.Cols)
	result.info("Destructible walls: %d", engine.CountCells(state.Grid, engine.DestructibleWall))
	result.info("Indestructible walls: %d", engine.CountCells(state.Grid, engine.IndestructibleWall))
	result.info("Spawns: player1 (%d,%d) facing %s, player2 (%d,%d) facing %s", p1.X, p1.Y, p1.Facing, p2.X, p2.Y, p2.Facing)
	result.info("Tick: %s", config.TickInterval())
	result.info("Symmetric: %t", engine.IsRotationallySymmetric(config.Layout))

	return result
}

// validateConnectivity ensures player 2's spawn is reachable from player 1's
// through cells that are empty or destructible
func validateConnectivity(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	state := engine.InitGameStateFromConfig(config)
	p1, p2 := config.SpawnFor(engine.Player1), config.SpawnFor(engine.Player2)
	from := engine.Position{X: p1.X, Y: p1.Y}
	to := engine.Position{X: p2.X, Y: p2.Y}

	reachable := engine.ReachableFrom(state.Grid, from)
	if !reachable[to] {
		result.fail("Connectivity failure: player2 at (%d,%d) unreachable from player1 at (%d,%d)", to.X, to.Y, from.X, from.Y)
		return result
	}

	result.info("Connectivity: players reachable (%d cells open to play)", len(reachable))
	return result
}

// findConfigs lists maze files in dir, sorted by name
func findConfigs(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// report prints the results and returns false when any file is invalid
func report(results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
	}
	return allValid
}

func run(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		var err error
		files, err = findConfigs(cmd.String("dir"))
		if err != nil {
			return fmt.Errorf("error finding config files: %w", err)
		}
	}
	if len(files) == 0 {
		return cli.Exit("no maze files found", 1)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	if !report(results) {
		return cli.Exit("", 1)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "validate Tank Battle maze files",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Value: "../configs",
				Usage: "Directory scanned when no files are given",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
