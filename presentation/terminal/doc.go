// Package terminal plays Tank Battle in a terminal using tcell.
//
// Each grid cell is drawn as two colored spaces. Both players share the
// keyboard: W/A/S/D and Space for player 1, the arrow keys and Enter for
// player 2. r resets the board; q, Esc or Ctrl-C quits.
package terminal
