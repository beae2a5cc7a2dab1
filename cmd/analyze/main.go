// Command analyze prints quick, human-readable heuristics about maze files in
// the project's configs directory. It summarizes dimensions, wall counts and
// spawn distance, and highlights mazes where a tank can be shot before it
// moves or where the two tanks can never meet.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/tank-battle/game/engine"
)

// Analysis summarizes one maze
type Analysis struct {
	Name               string
	Rows, Cols         int
	Destructible       int
	Indestructible     int
	Open               int
	SpawnDistance      int
	Reachable          int
	SpawnsConnected    bool
	Symmetric          bool
	OpeningShots       []engine.PlayerID
	CoverAroundSpawns  map[engine.PlayerID]int
	ShotsToClearMiddle int
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
			matches, _ := filepath.Glob(filepath.Join("configs", pattern))
			files = append(files, matches...)
		}
		sort.Strings(files)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		config, err := engine.LoadGameConfig(file)
		if err != nil {
			fmt.Printf("Error loading maze: %v\n", err)
			continue
		}
		printAnalysis(analyzeConfig(config))
	}
}

// analyzeConfig computes the heuristics for a valid maze
func analyzeConfig(config *engine.GameConfig) Analysis {
	state := engine.InitGameStateFromConfig(config)
	p1 := state.Tanks[engine.Player1.Index()]
	p2 := state.Tanks[engine.Player2.Index()]

	reachable := engine.ReachableFrom(state.Grid, p1.Pos)

	a := Analysis{
		Name:              config.Name,
		Rows:              config.Rows,
		Cols:              config.Cols,
		Destructible:      engine.CountCells(state.Grid, engine.DestructibleWall),
		Indestructible:    engine.CountCells(state.Grid, engine.IndestructibleWall),
		Open:              engine.CountCells(state.Grid, engine.Empty),
		SpawnDistance:     engine.ManhattanDistance(p1.Pos, p2.Pos),
		Reachable:         len(reachable),
		SpawnsConnected:   reachable[p2.Pos],
		Symmetric:         engine.IsRotationallySymmetric(config.Layout),
		CoverAroundSpawns: map[engine.PlayerID]int{},
	}

	// A tank facing its opponent down a clear line can win on the first shot
	for _, pair := range [][2]engine.Tank{{p1, p2}, {p2, p1}} {
		shooter, target := pair[0], pair[1]
		if engine.LineOfFire(state, shooter.Pos, shooter.Facing, target.Pos) {
			a.OpeningShots = append(a.OpeningShots, shooter.Player)
		}
	}

	for _, tank := range []engine.Tank{p1, p2} {
		for _, d := range engine.Directions {
			next := tank.Pos.Step(d)
			if state.InBounds(next.X, next.Y) && state.Grid[next.Y][next.X] == engine.DestructibleWall {
				a.CoverAroundSpawns[tank.Player]++
			}
		}
	}

	a.ShotsToClearMiddle = shotsToClearRow(state, config.Rows/2)
	return a
}

// shotsToClearRow counts destructible walls in a row; each takes one shot
func shotsToClearRow(state *engine.GameState, y int) int {
	if y < 0 || y >= len(state.Grid) {
		return 0
	}
	return engine.CountCells([][]engine.Cell{state.Grid[y]}, engine.DestructibleWall)
}

func printAnalysis(a Analysis) {
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Grid Size: %d x %d\n", a.Cols, a.Rows)
	fmt.Printf("Walls: %d destructible, %d indestructible, %d open cells\n", a.Destructible, a.Indestructible, a.Open)
	fmt.Printf("Spawn Distance: %d\n", a.SpawnDistance)
	fmt.Printf("Symmetric: %t\n", a.Symmetric)
	fmt.Printf("Cover Around Spawns: player1 %d, player2 %d\n",
		a.CoverAroundSpawns[engine.Player1], a.CoverAroundSpawns[engine.Player2])
	fmt.Printf("Shots To Clear Middle Row: %d\n", a.ShotsToClearMiddle)

	if a.SpawnsConnected {
		fmt.Printf("✅ Tanks can meet (%d cells reachable once bricks are shot)\n", a.Reachable)
	} else {
		fmt.Printf("⚠️  CRITICAL: tanks can never meet, steel walls separate the spawns\n")
	}

	if len(a.OpeningShots) > 0 {
		for _, p := range a.OpeningShots {
			fmt.Printf("⚠️  WARNING: %s starts facing a clear shot at its opponent\n", p)
		}
	} else {
		fmt.Printf("✅ No tank starts in a clear line of fire\n")
	}
}
