package engine

// Flag is the set of attributes of a single cell. Attributes combine freely,
// e.g. an object resting on a goal.
type Flag uint8

const (
	None   Flag = 0
	Object Flag = 1 << 0
	Actor  Flag = 1 << 1
	Goal   Flag = 1 << 2
)

// Has reports whether every bit of other is set
func (f Flag) Has(other Flag) bool { return f&other == other && other != None }

// With returns f with other set
func (f Flag) With(other Flag) Flag { return f | other }

// Without returns f with other cleared
func (f Flag) Without(other Flag) Flag { return f &^ other }

// Layout glyphs. The same alphabet is used to write levels and to render.
const (
	GlyphEmpty       = ' '
	GlyphEmptyAlt    = '-'
	GlyphObject      = 'o'
	GlyphActor       = 'p'
	GlyphGoal        = '.'
	GlyphObjectGoal  = 'O'
	GlyphActorOnGoal = 'P'
)

// EncodeCell returns the glyph for a cell. Object wins over actor, and a
// goal upper-cases whatever stands on it.
func EncodeCell(f Flag) byte {
	var c byte = GlyphEmpty
	switch {
	case f.Has(Object):
		c = GlyphObject
	case f.Has(Actor):
		c = GlyphActor
	}
	if !f.Has(Goal) {
		return c
	}
	switch c {
	case GlyphObject:
		return GlyphObjectGoal
	case GlyphActor:
		return GlyphActorOnGoal
	default:
		return GlyphGoal
	}
}

// DecodeCell converts a layout glyph to its flags
func DecodeCell(c byte) (Flag, bool) {
	switch c {
	case GlyphEmpty, GlyphEmptyAlt:
		return None, true
	case GlyphObject:
		return Object, true
	case GlyphActor:
		return Actor, true
	case GlyphGoal:
		return Goal, true
	case GlyphObjectGoal:
		return Object | Goal, true
	case GlyphActorOnGoal:
		return Actor | Goal, true
	default:
		return None, false
	}
}
