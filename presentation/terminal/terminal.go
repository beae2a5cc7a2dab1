package terminal

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/tank-battle/game/engine"
	"github.com/wricardo/tank-battle/game/match"
)

// CellWidth is the number of terminal columns used per grid cell
const CellWidth = 2

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleStatus  = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleHelp    = styleDefault.Foreground(tcell.ColorGray)
)

// Game plays one match in a terminal
type Game struct {
	screen tcell.Screen
	loop   *match.Loop
	logger *log.Entry

	mu     sync.Mutex
	state  *engine.GameState
	redraw chan struct{}
}

// Option configures a Game
type Option func(*Game)

// WithLogger sets the log entry used by the game
func WithLogger(logger *log.Entry) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a terminal game on an initialised screen
func New(screen tcell.Screen, config *engine.GameConfig, opts ...Option) (*Game, error) {
	e, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	g := &Game{
		screen: screen,
		logger: log.WithField("component", "terminal"),
		redraw: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.loop = match.New(e, match.WithLogger(g.logger), match.WithOnUpdate(g.update))
	return g, nil
}

// Loop returns the match loop driving the game
func (g *Game) Loop() *match.Loop {
	return g.loop
}

func (g *Game) update(state *engine.GameState) {
	g.mu.Lock()
	g.state = state
	g.mu.Unlock()

	select {
	case g.redraw <- struct{}{}:
	default:
	}
}

// Run plays until a quit key is pressed or ctx is done. The match loop is
// stopped and the screen finalised before it returns.
func (g *Game) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.screen.SetStyle(styleDefault)
	g.screen.HideCursor()
	g.screen.Clear()

	go g.loop.Run(ctx)
	defer func() {
		g.loop.Stop()
		<-g.loop.Done()
		g.screen.Fini()
	}()

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-g.redraw:
			g.draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				g.screen.Sync()
				g.draw()
			case *tcell.EventKey:
				if quit := g.handleKey(ctx, ev); quit {
					g.logger.Debug("quit requested")
					return nil
				}
			}
		}
	}
}

func (g *Game) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyRune && ev.Rune() == 'r' {
		if _, err := g.loop.Reset(ctx); err != nil {
			g.logger.WithError(err).Warn("reset failed")
		}
		return false
	}

	key, quit := KeyFor(ev)
	if quit {
		return true
	}
	if key == "" {
		return false
	}

	res, err := g.loop.PressKey(ctx, key)
	if err != nil {
		g.logger.WithError(err).Warn("key press failed")
		return false
	}
	g.logger.WithFields(log.Fields{"key": key, "bound": res.Bound, "applied": res.Applied}).Debug("key")
	return false
}

// KeyFor translates a tcell key event into a dispatch key. quit is true for
// q, Esc and Ctrl-C.
func KeyFor(ev *tcell.EventKey) (key string, quit bool) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return "", true
	case tcell.KeyUp:
		return engine.KeyArrowUp, false
	case tcell.KeyDown:
		return engine.KeyArrowDown, false
	case tcell.KeyLeft:
		return engine.KeyArrowLeft, false
	case tcell.KeyRight:
		return engine.KeyArrowRight, false
	case tcell.KeyEnter:
		return engine.KeyEnter, false
	case tcell.KeyRune:
		r := ev.Rune()
		if r == 'q' || r == 'Q' {
			return "", true
		}
		return strings.ToLower(string(r)), false
	}
	return "", false
}

// StyleFor returns the cell style for a render color
func StyleFor(c engine.Color) tcell.Style {
	rgba := c.RGBA()
	return styleDefault.Background(tcell.NewRGBColor(int32(rgba.R), int32(rgba.G), int32(rgba.B)))
}

func (g *Game) draw() {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()
	if state == nil {
		return
	}

	g.screen.Clear()
	for y, row := range state.Render() {
		for x, c := range row {
			style := StyleFor(c)
			for i := 0; i < CellWidth; i++ {
				g.screen.SetContent(x*CellWidth+i, y, ' ', nil, style)
			}
		}
	}

	line := state.Rows + 1
	drawText(g.screen, 0, line, styleStatus, status(state))
	drawText(g.screen, 0, line+1, styleHelp, "P1: W/A/S/D move, Space fire   P2: arrows move, Enter fire")
	drawText(g.screen, 0, line+2, styleHelp, "r reset   q quit")
	g.screen.Show()
}

func status(state *engine.GameState) string {
	if state.GameOver {
		if state.Winner == engine.WinnerDraw {
			return "GAME OVER - DRAW"
		}
		return fmt.Sprintf("GAME OVER - %s WINS", state.Winner)
	}
	return fmt.Sprintf("%s  tick %d  projectiles %d", state.ConfigName, state.Tick, len(state.Projectiles))
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
