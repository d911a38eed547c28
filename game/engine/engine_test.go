package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(DefaultLevel())
	require.NoError(t, err)
	assert.Equal(t, 6, e.Width())
	assert.Equal(t, 3, e.Height())
	assert.Equal(t, Coordinate{X: 4, Y: 0}, e.Actor())
	assert.Equal(t, "classic", e.Level().Name)
	assert.Nil(t, e.LastMove())

	_, err = NewEngine(&Level{Name: "bad", Layout: []string{"x"}})
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestCellAndLookup(t *testing.T) {
	e := NewEngineWithDefaults()
	assert.Equal(t, Goal, e.Cell(Coordinate{X: 1, Y: 0}))
	assert.Equal(t, Object, e.Cell(Coordinate{X: 1, Y: 1}))
	assert.Equal(t, Actor, e.Cell(Coordinate{X: 4, Y: 0}))
	assert.Equal(t, None, e.Cell(Coordinate{X: 0, Y: 2}))

	assert.Panics(t, func() { e.Cell(Coordinate{X: 6, Y: 0}) })

	f, ok := e.Lookup(Coordinate{X: -1, Y: 0})
	assert.False(t, ok)
	assert.Equal(t, None, f)
}

func TestIsSolved(t *testing.T) {
	e := NewEngineWithDefaults()
	assert.False(t, e.IsSolved())

	for _, d := range []Direction{Down(), Down(), Left(), Left(), Up(), Down(), Left(), Up()} {
		require.True(t, e.Move(d), "move %s", d)
	}
	assert.True(t, e.IsSolved())

	state := e.State()
	assert.True(t, state.Solved)
	assert.Equal(t, 2, state.GoalsTotal)
	assert.Equal(t, 2, state.GoalsFilled)
	assert.Equal(t, 8, state.Moves)
	assert.Equal(t, 2, state.Pushes)
}

func TestIsSolved_NoGoals(t *testing.T) {
	e := newTestEngine(t, "p o")
	assert.False(t, e.IsSolved())
}

func TestApply_RecordsHistory(t *testing.T) {
	e := NewEngineWithDefaults()

	entry := e.Apply(Left())
	assert.True(t, entry.Success)
	assert.Equal(t, Coordinate{X: 4, Y: 0}, entry.From)
	assert.Equal(t, Coordinate{X: 3, Y: 0}, entry.To)
	assert.Equal(t, 1, entry.MoveNumber)

	e.Apply(Down())
	entry = e.Apply(Left())
	assert.Equal(t, 2, entry.Pushed)

	entry = e.Apply(Left())
	assert.False(t, entry.Success)
	assert.Equal(t, 0, entry.Pushed)
	assert.Equal(t, entry.From, entry.To)
	assert.Equal(t, 4, entry.MoveNumber)

	assert.Len(t, e.MoveHistory(), 4)
	assert.Equal(t, entry, *e.LastMove())

	state := e.State()
	assert.Equal(t, 3, state.Moves)
	assert.Equal(t, 4, state.Attempts)
}

func TestApply_HistoryIsCapped(t *testing.T) {
	e := newTestEngine(t, "p")
	for i := 0; i < MaxHistory+10; i++ {
		e.Apply(Up())
	}
	history := e.MoveHistory()
	assert.Len(t, history, MaxHistory)
	assert.Equal(t, 11, history[0].MoveNumber)
	assert.Equal(t, MaxHistory+10, e.LastMove().MoveNumber)
}

func TestReset(t *testing.T) {
	e := NewEngineWithDefaults()
	initial := e.State().Rows

	e.Apply(Left())
	e.Apply(Down())
	e.Apply(Left())
	require.NotEqual(t, initial, e.State().Rows)

	e.Reset()
	state := e.State()
	assert.Equal(t, initial, state.Rows)
	assert.Equal(t, Coordinate{X: 4, Y: 0}, e.Actor())
	assert.Zero(t, state.Moves)
	assert.Zero(t, state.Pushes)
	assert.Len(t, state.MoveHistory, 3)
}

func TestStateRestoreRoundTrip(t *testing.T) {
	e := NewEngineWithDefaults()
	e.Apply(Left())
	e.Apply(Down())
	e.Apply(Left())
	saved := e.State()

	restored := NewEngineWithDefaults()
	require.NoError(t, restored.Restore(saved))
	assert.Equal(t, saved.Rows, restored.State().Rows)
	assert.Equal(t, saved.Actor, restored.Actor())
	assert.Equal(t, saved.Moves, restored.State().Moves)
	assert.Equal(t, saved.Pushes, restored.State().Pushes)
	assert.Len(t, restored.MoveHistory(), 3)

	// The snapshot is a copy, later moves must not leak into it
	e.Apply(Up())
	assert.Len(t, saved.MoveHistory, 3)
}

func TestRestore_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		state *GameState
	}{
		{"Nil", nil},
		{"BadRows", &GameState{Rows: []string{"xx"}}},
		{"WrongSize", &GameState{Rows: []string{"p"}}},
		{"WrongGoals", &GameState{Rows: []string{"    p ", " oo   ", "      "}}},
		{"MovedGoals", &GameState{Rows: []string{"..   p", "  oooo", "      "}}},
		{"ExtraObject", &GameState{Rows: []string{" ..  p", "ooo   ", "      "}}},
		{"MissingObject", &GameState{Rows: []string{" .O  p", "      ", "      "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngineWithDefaults()
			before := e.State()
			err := e.Restore(tt.state)
			assert.ErrorIs(t, err, ErrInvalidState)
			assert.Equal(t, before.Rows, e.State().Rows)
		})
	}
}

func TestRestore_CapsHistory(t *testing.T) {
	e := NewEngineWithDefaults()
	state := e.State()
	for i := 1; i <= MaxHistory+5; i++ {
		state.MoveHistory = append(state.MoveHistory, MoveHistoryEntry{Direction: Up(), MoveNumber: i})
	}
	state.Attempts = MaxHistory + 5

	require.NoError(t, e.Restore(state))
	history := e.MoveHistory()
	assert.Len(t, history, MaxHistory)
	assert.Equal(t, 6, history[0].MoveNumber)
	assert.Equal(t, MaxHistory+5, e.LastMove().MoveNumber)
}

func TestFindCells(t *testing.T) {
	e := NewEngineWithDefaults()
	assert.Equal(t, []Coordinate{{1, 0}, {2, 0}}, FindCells(e, Goal))
	assert.Equal(t, []Coordinate{{1, 1}, {2, 1}}, FindCells(e, Object))
}
