package levels

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/wricardo/mcp-training/pushbox/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Warnings never make a level invalid.
type ValidationResult struct {
	File     string        `json:"file"`
	Valid    bool          `json:"valid"`
	Level    *engine.Level `json:"-"`
	Errors   []string      `json:"errors,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// ValidateFile parses a level file and checks it can be played
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	level, err := ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Level = level

	board, _, err := engine.ParseLayout(level.Layout)
	if err != nil {
		// ReadFile already validated the layout
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	goals := board.Count(engine.Goal)
	objects := board.Count(engine.Object)
	filled := board.Count(engine.Object | engine.Goal)
	switch {
	case goals == 0:
		result.Warnings = append(result.Warnings, "level has no goals and can never be solved")
	case objects < goals:
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("level has %d goals but only %d objects", goals, objects))
	case filled == goals:
		result.Warnings = append(result.Warnings, "level starts solved")
	}

	// An object in a corner can never be pushed again
	w, h := board.Width(), board.Height()
	if w > 1 && h > 1 {
		for _, c := range []engine.Coordinate{{X: 0, Y: 0}, {X: w - 1, Y: 0}, {X: 0, Y: h - 1}, {X: w - 1, Y: h - 1}} {
			f := board.At(c)
			if f.Has(engine.Object) && !f.Has(engine.Goal) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("object at %s is stuck in a corner", c))
			}
		}
	}

	return result
}

// ValidateDir validates every level file in dir, in file name order
func ValidateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read level directory")
	}

	var results []ValidationResult
	for _, entry := range entries {
		if entry.IsDir() || !IsLevelFile(entry.Name()) {
			continue
		}
		results = append(results, ValidateFile(filepath.Join(dir, entry.Name())))
	}
	return results, nil
}
