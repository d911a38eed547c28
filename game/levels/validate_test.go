package levels

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name         string
		file         string
		content      string
		valid        bool
		errContains  string
		warnContains string
	}{
		{"Valid", "ok.json", `{"name":"ok","layout":[" .. p "," oo   ","      "]}`, true, "", ""},
		{"BadGlyph", "glyph.json", `{"name":"g","layout":["p#"]}`, false, "invalid character '#'", ""},
		{"TooFewObjects", "few.yaml", "name: few\nlayout: [\"p..o\"]\n", false, "2 goals but only 1 objects", ""},
		{"NoGoals", "free.yaml", "name: free\nlayout: [\"p o\"]\n", true, "", "no goals"},
		{"StartsSolved", "done.json", `{"name":"done","layout":["pO"]}`, true, "", "starts solved"},
		{"CornerObject", "corner.json", `{"name":"c","layout":["o . ","  p "]}`, true, "", "stuck in a corner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeLevelFile(t, dir, tt.file, tt.content)
			result := ValidateFile(filepath.Join(dir, tt.file))
			assert.Equal(t, tt.file, result.File)
			assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.Errors)
			if tt.errContains != "" {
				require.NotEmpty(t, result.Errors)
				assert.Contains(t, result.Errors[0], tt.errContains)
			}
			if tt.warnContains != "" {
				require.NotEmpty(t, result.Warnings)
				assert.Contains(t, result.Warnings[0], tt.warnContains)
			}
		})
	}
}

func TestValidateDir(t *testing.T) {
	results, err := ValidateDir(newLevelDir(t))
	require.NoError(t, err)
	require.Len(t, results, 3)

	byFile := map[string]ValidationResult{}
	for _, r := range results {
		byFile[r.File] = r
	}
	assert.True(t, byFile["classic.json"].Valid)
	assert.True(t, byFile["corridor.yaml"].Valid)
	assert.False(t, byFile["broken.json"].Valid)

	_, err = ValidateDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestValidateDir_ShippedLevels(t *testing.T) {
	results, err := ValidateDir(filepath.Join("..", "..", "levels"))
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, r.Valid, "%s: %v", r.File, r.Errors)
		assert.Empty(t, r.Warnings, r.File)
	}
}
