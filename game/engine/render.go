package engine

import "image/color"

// Color is the flat fill used for a rendered cell
type Color string

const (
	ColorIndestructible Color = "gray"
	ColorDestructible   Color = "orange"
	ColorPlayer1        Color = "blue"
	ColorPlayer2        Color = "red"
	ColorProjectile     Color = "yellow"
	ColorEmpty          Color = "#333"
)

var colorRGBA = map[Color]color.RGBA{
	ColorIndestructible: {0x80, 0x80, 0x80, 0xff},
	ColorDestructible:   {0xff, 0xa5, 0x00, 0xff},
	ColorPlayer1:        {0x00, 0x00, 0xff, 0xff},
	ColorPlayer2:        {0xff, 0x00, 0x00, 0xff},
	ColorProjectile:     {0xff, 0xff, 0x00, 0xff},
	ColorEmpty:          {0x33, 0x33, 0x33, 0xff},
}

// RGBA converts the color to an opaque RGBA value
func (c Color) RGBA() color.RGBA {
	if rgba, ok := colorRGBA[c]; ok {
		return rgba
	}
	return colorRGBA[ColorEmpty]
}

var colorChars = map[Color]byte{
	ColorIndestructible: '#',
	ColorDestructible:   '+',
	ColorPlayer1:        '1',
	ColorPlayer2:        '2',
	ColorProjectile:     '*',
	ColorEmpty:          '.',
}

// Char returns the single character used by the text rendering
func (c Color) Char() byte {
	if ch, ok := colorChars[c]; ok {
		return ch
	}
	return '?'
}

// ColorAt derives the color of a cell. Priority: indestructible wall,
// destructible wall, live player 1, live player 2, any projectile, empty.
func (gs *GameState) ColorAt(x, y int) Color {
	switch gs.CellAt(x, y) {
	case IndestructibleWall:
		return ColorIndestructible
	case DestructibleWall:
		return ColorDestructible
	}

	pos := Position{X: x, Y: y}
	if t := gs.Tanks[0]; t.Alive && t.Pos == pos {
		return ColorPlayer1
	}
	if t := gs.Tanks[1]; t.Alive && t.Pos == pos {
		return ColorPlayer2
	}
	for _, p := range gs.Projectiles {
		if p.Pos == pos {
			return ColorProjectile
		}
	}
	return ColorEmpty
}

// Render returns the color of every cell, row by row
func (gs *GameState) Render() [][]Color {
	out := make([][]Color, len(gs.Grid))
	for y, row := range gs.Grid {
		out[y] = make([]Color, len(row))
		for x := range row {
			out[y][x] = gs.ColorAt(x, y)
		}
	}
	return out
}

// RenderText returns the board as one string per row using the
// characters # + 1 2 * .
func (gs *GameState) RenderText() []string {
	colors := gs.Render()
	lines := make([]string, len(colors))
	for y, row := range colors {
		buf := make([]byte, len(row))
		for x, c := range row {
			buf[x] = c.Char()
		}
		lines[y] = string(buf)
	}
	return lines
}
