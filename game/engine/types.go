package engine

// GameState is a serializable snapshot of an engine. Rows use the layout
// alphabet, so a snapshot's rows are themselves a valid layout.
type GameState struct {
	Level       string             `json:"level"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Rows        []string           `json:"rows"`
	Actor       Coordinate         `json:"actor"`
	Moves       int                `json:"moves"`
	Pushes      int                `json:"pushes"`
	Attempts    int                `json:"attempts"`
	Solved      bool               `json:"solved"`
	GoalsTotal  int                `json:"goals_total"`
	GoalsFilled int                `json:"goals_filled"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`

	// Computed helper view, not used by the engine
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// MoveHistoryEntry records one attempted move
type MoveHistoryEntry struct {
	Direction  Direction  `json:"direction"`
	From       Coordinate `json:"from"`
	To         Coordinate `json:"to"`
	Pushed     int        `json:"pushed"`
	Success    bool       `json:"success"`
	MoveNumber int        `json:"move_number"`
	Timestamp  int64      `json:"timestamp"`
}
