// Command desktop plays Tank Battle in a window. Both players share the
// keyboard: W/A/S/D and Space for player 1, the arrow keys and Enter for
// player 2. R resets the board and Escape quits.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/wricardo/tank-battle/game/engine"
)

const (
	cellSize     = 40
	headerHeight = 40
	tps          = 60
)

// keyBinding pairs an ebiten key with its dispatch key
type keyBinding struct {
	key      ebiten.Key
	dispatch string
}

// Checked in this order every frame
var keyBindings = []keyBinding{
	{ebiten.KeyW, "w"},
	{ebiten.KeyA, "a"},
	{ebiten.KeyS, "s"},
	{ebiten.KeyD, "d"},
	{ebiten.KeySpace, engine.KeySpace},
	{ebiten.KeyArrowUp, engine.KeyArrowUp},
	{ebiten.KeyArrowDown, engine.KeyArrowDown},
	{ebiten.KeyArrowLeft, engine.KeyArrowLeft},
	{ebiten.KeyArrowRight, engine.KeyArrowRight},
	{ebiten.KeyEnter, engine.KeyEnter},
}

var backgroundColor = color.RGBA{20, 20, 20, 255}

// Game owns the engine. Ebiten calls Update and Draw from one goroutine, so
// input and ticks never overlap.
type Game struct {
	engine   *engine.GameEngine
	interval time.Duration
	elapsed  time.Duration
}

// NewGame creates a game on the given maze
func NewGame(config *engine.GameConfig) (*Game, error) {
	e, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}
	return &Game{
		engine:   e,
		interval: config.TickInterval(),
	}, nil
}

// Update handles input, then advances projectiles once per elapsed tick
// interval
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.engine.Reset()
		g.elapsed = 0
		return nil
	}

	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			g.engine.HandleKey(b.dispatch)
		}
	}

	g.elapsed += time.Second / tps
	for g.elapsed >= g.interval {
		g.engine.Tick()
		g.elapsed -= g.interval
	}
	return nil
}

// Draw fills one flat rectangle per cell
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	state := g.engine.GetState()
	for y, row := range state.Render() {
		for x, c := range row {
			ebitenutil.DrawRect(screen,
				float64(x*cellSize+1),
				float64(headerHeight+y*cellSize+1),
				cellSize-2, cellSize-2,
				c.RGBA())
		}
	}

	ebitenutil.DebugPrintAt(screen, status(state), 10, 4)
	ebitenutil.DebugPrintAt(screen, "P1: WASD + Space   P2: Arrows + Enter   R reset   Esc quit", 10, 20)
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	state := g.engine.GetState()
	return state.Cols * cellSize, headerHeight + state.Rows*cellSize
}

func status(state *engine.GameState) string {
	if state.GameOver {
		if state.Winner == engine.WinnerDraw {
			return "GAME OVER - DRAW"
		}
		return fmt.Sprintf("GAME OVER - %s WINS", state.Winner)
	}
	return fmt.Sprintf("%s  tick %d", state.ConfigName, state.Tick)
}

func main() {
	mazeFile := flag.String("maze", "", "Maze file (JSON or YAML); the classic maze when empty")
	flag.Parse()

	config := engine.DefaultGameConfig()
	if *mazeFile != "" {
		loaded, err := engine.LoadGameConfig(*mazeFile)
		if err != nil {
			log.Fatalf("Failed to load maze: %v", err)
		}
		config = loaded
	}

	game, err := NewGame(config)
	if err != nil {
		log.Fatalf("Invalid maze: %v", err)
	}

	ebiten.SetTPS(tps)
	ebiten.SetWindowSize(config.Cols*cellSize, headerHeight+config.Rows*cellSize)
	ebiten.SetWindowTitle("Tank Battle")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
