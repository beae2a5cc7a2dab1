package engine

// StepProjectiles advances every projectile by one cell.
//
// All transitions are decided against the maze and tanks as they are at the
// start of the tick; walls and tanks are only mutated afterwards, as one batch.
// Two projectiles striking the same destructible wall therefore both stop
// there, and the wall is cleared once. The check order for the target cell is
// bounds, destructible wall, indestructible wall, live tank.
func (gs *GameState) StepProjectiles() TickReport {
	gs.Tick++
	report := TickReport{Tick: gs.Tick}
	if len(gs.Projectiles) == 0 {
		return report
	}
	report.Changed = true

	survivors := make([]Projectile, 0, len(gs.Projectiles))
	var walls []Position
	var hits []int

	for _, p := range gs.Projectiles {
		next := p.Pos.Step(p.Direction)

		if !gs.InBounds(next.X, next.Y) {
			report.Removed++
			continue
		}

		switch gs.Grid[next.Y][next.X] {
		case DestructibleWall:
			walls = append(walls, next)
			report.Removed++
			continue
		case IndestructibleWall:
			report.Removed++
			continue
		}

		if struck := gs.liveTanksAt(next); len(struck) > 0 {
			hits = append(hits, struck...)
			report.Removed++
			continue
		}

		p.Pos = next
		survivors = append(survivors, p)
		report.Moved++
	}

	for _, w := range walls {
		if gs.Grid[w.Y][w.X] != DestructibleWall {
			continue
		}
		gs.Grid[w.Y][w.X] = Empty
		report.WallsDestroyed = append(report.WallsDestroyed, w)
		gs.addToHistory(ActionEntry{Action: ActionNameWallDestroyed, From: w, To: w, Success: true})
	}

	for _, idx := range hits {
		tank := &gs.Tanks[idx]
		if !tank.Alive {
			continue
		}
		tank.Alive = false
		report.TanksDestroyed = append(report.TanksDestroyed, tank.Player)
		gs.addToHistory(ActionEntry{Action: ActionNameTankDestroyed, Player: tank.Player, From: tank.Pos, To: tank.Pos, Success: true})
	}

	gs.Projectiles = survivors
	gs.updateOutcome()
	return report
}

// liveTanksAt returns the slots of every live tank standing on pos
func (gs *GameState) liveTanksAt(pos Position) []int {
	var out []int
	for i, t := range gs.Tanks {
		if t.Alive && t.Pos == pos {
			out = append(out, i)
		}
	}
	return out
}
