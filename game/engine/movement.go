package engine

import (
	"fmt"
	"time"
)

// InBounds reports whether (x, y) lies inside the grid
func (gs *GameState) InBounds(x, y int) bool {
	if y < 0 || y >= len(gs.Grid) {
		return false
	}
	return x >= 0 && x < len(gs.Grid[y])
}

// CellAt returns the cell at (x, y). Out of bounds reads as indestructible.
func (gs *GameState) CellAt(x, y int) Cell {
	if !gs.InBounds(x, y) {
		return IndestructibleWall
	}
	return gs.Grid[y][x]
}

// CanMoveTo checks if a tank can enter the specified coordinates
func (gs *GameState) CanMoveTo(x, y int) bool {
	// Tanks only enter empty cells; the other tank is not an obstacle
	return gs.InBounds(x, y) && gs.Grid[y][x] == Empty
}

// Tank returns the tank for the player, or nil for an unknown player
func (gs *GameState) Tank(player PlayerID) *Tank {
	idx := player.Index()
	if idx < 0 {
		return nil
	}
	return &gs.Tanks[idx]
}

// MoveTank attempts to move the player's tank one cell in the given direction.
// A blocked move is a full no-op: neither position nor facing changes.
func (gs *GameState) MoveTank(player PlayerID, direction Direction) bool {
	tank := gs.Tank(player)
	if tank == nil || !direction.Valid() {
		return false
	}

	from := tank.Pos
	if !tank.Alive {
		gs.addToHistory(ActionEntry{Action: ActionNameMove, Player: player, Direction: direction, From: from, To: from})
		return false
	}

	target := from.Step(direction)
	if !gs.CanMoveTo(target.X, target.Y) {
		gs.Message = fmt.Sprintf("%s can't move %s: %s at (%d,%d)",
			player, direction, gs.CellAt(target.X, target.Y), target.X, target.Y)
		gs.addToHistory(ActionEntry{Action: ActionNameMove, Player: player, Direction: direction, From: from, To: target})
		return false
	}

	tank.Pos = target
	tank.Facing = direction
	gs.addToHistory(ActionEntry{Action: ActionNameMove, Player: player, Direction: direction, From: from, To: target, Success: true})
	return true
}

// Fire appends a projectile at the tank's position travelling in its facing
// direction. There is no limit on live projectiles.
func (gs *GameState) Fire(player PlayerID) bool {
	tank := gs.Tank(player)
	if tank == nil {
		return false
	}
	if !tank.Alive {
		gs.addToHistory(ActionEntry{Action: ActionNameFire, Player: player, Direction: tank.Facing, From: tank.Pos, To: tank.Pos})
		return false
	}

	gs.Projectiles = append(gs.Projectiles, Projectile{
		Pos:       tank.Pos,
		Direction: tank.Facing,
		Owner:     player,
	})
	gs.addToHistory(ActionEntry{Action: ActionNameFire, Player: player, Direction: tank.Facing, From: tank.Pos, To: tank.Pos, Success: true})
	return true
}

// AliveCount returns the number of live tanks
func (gs *GameState) AliveCount() int {
	n := 0
	for _, t := range gs.Tanks {
		if t.Alive {
			n++
		}
	}
	return n
}

// updateOutcome sets GameOver and Winner once at most one tank is alive
func (gs *GameState) updateOutcome() {
	if gs.GameOver {
		return
	}
	switch gs.AliveCount() {
	case NumPlayers:
		return
	case 0:
		gs.GameOver = true
		gs.Winner = WinnerDraw
		gs.Message = "Both tanks destroyed! Draw!"
	default:
		for _, t := range gs.Tanks {
			if t.Alive {
				gs.GameOver = true
				gs.Winner = string(t.Player)
				gs.Message = fmt.Sprintf("%s wins!", t.Player)
			}
		}
	}
}

// addToHistory appends an entry, stamping tick, number and time
func (gs *GameState) addToHistory(entry ActionEntry) {
	gs.TotalEvents++
	entry.Number = gs.TotalEvents
	entry.Tick = gs.Tick
	entry.Timestamp = time.Now().Unix()

	gs.History = append(gs.History, entry)
	if over := len(gs.History) - MaxHistoryEntries; over > 0 {
		gs.History = append(gs.History[:0:0], gs.History[over:]...)
	}
}
