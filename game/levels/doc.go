// Package levels loads, caches and stores Pushbox levels.
//
// Levels live in a directory as JSON or YAML files. The file name without
// its extension is the level id used to create sessions:
//
//	name: Classic
//	description: Push both crates up onto the two goals
//	layout:
//	  - " .. p "
//	  - " oo   "
//	  - "      "
//
// Layout glyphs: ' ' or '-' empty, 'o' object, 'p' actor, '.' goal,
// 'O' object on a goal, 'P' actor on a goal.
//
// The default level is classic when that file exists, otherwise the first
// valid file, otherwise the built-in engine.DefaultLevel. Watch keeps the
// cache in step with the directory.
package levels
