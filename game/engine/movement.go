package engine

// chainLength returns how many objects a move from pos in direction d would
// push, or -1 if the move is blocked. The scan walks the contiguous run of
// objects ahead and requires the cell after the run to be on the board.
func (e *GameEngine) chainLength(pos Coordinate, d Direction) int {
	off := d.Offset()
	n := 0
	for next := pos.Add(off); ; next = next.Add(off) {
		if !e.board.InBounds(next) {
			return -1
		}
		if !e.board.At(next).Has(Object) {
			return n
		}
		n++
	}
}

// ChainLength returns how many objects moving in direction d would push, or
// -1 if the move is blocked
func (e *GameEngine) ChainLength(d Direction) int {
	return e.chainLength(e.actor, d)
}

// CanMove checks if the actor can move in direction d
func (e *GameEngine) CanMove(d Direction) bool {
	return e.ChainLength(d) >= 0
}

// PossibleMoves returns all directions the actor can currently move in
func (e *GameEngine) PossibleMoves() []Direction {
	var possible []Direction
	for _, d := range Directions() {
		if e.CanMove(d) {
			possible = append(possible, d)
		}
	}
	return possible
}

// Move moves the actor one cell in direction d, pushing any run of objects
// ahead of it. It reports whether the move happened; a blocked move leaves
// the board untouched.
func (e *GameEngine) Move(d Direction) bool {
	n := e.chainLength(e.actor, d)
	if n < 0 {
		return false
	}

	off := d.Offset()
	e.board.Clear(e.actor, Actor)
	e.actor = e.actor.Add(off)
	// Any object that stood here now belongs to the pushed run
	e.board.Clear(e.actor, Object)
	e.board.Set(e.actor, Actor)
	if n > 0 {
		// Cells inside the run keep their object; only the far end gains one
		e.board.Set(e.actor.Add(off.Scale(n)), Object)
		e.pushes++
	}
	e.moves++
	return true
}
