package domain

import "strings"

// Category tags a generation with the kind of game feature its prompt asks for.
type Category string

const (
	CategoryScript       Category = "script"
	CategoryGUI          Category = "gui"
	CategoryTool         Category = "tool"
	CategoryGameMechanic Category = "game_mechanic"
	CategoryAnimation    Category = "animation"
	CategorySound        Category = "sound"
	// CategoryOther is never produced by Classify; it is the display fallback
	// for tags this build does not know about.
	CategoryOther Category = "other"
)

type keywordRule struct {
	category Category
	keywords []string
}

// classifierRules are evaluated top to bottom and the first rule with a
// matching keyword wins, so "gui tool" is a gui prompt.
var classifierRules = []keywordRule{
	{category: CategoryGUI, keywords: []string{"gui", "ui", "button"}},
	{category: CategoryTool, keywords: []string{"tool", "weapon"}},
	{category: CategoryGameMechanic, keywords: []string{"jump", "walk", "mechanic"}},
	{category: CategoryAnimation, keywords: []string{"anim"}},
	{category: CategorySound, keywords: []string{"sound", "music"}},
}

// Classify maps prompt text to a category using case-insensitive substring
// matching. It is total: prompts that match no rule are CategoryScript.
func Classify(prompt string) Category {
	lower := strings.ToLower(prompt)
	for _, rule := range classifierRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return CategoryScript
}

// Palette names a display colour family.
type Palette string

const (
	PaletteBlue   Palette = "blue"
	PalettePurple Palette = "purple"
	PaletteGreen  Palette = "green"
	PaletteOrange Palette = "orange"
	PalettePink   Palette = "pink"
	PaletteCyan   Palette = "cyan"
	PaletteGray   Palette = "gray"
)

var categoryPalettes = map[Category]Palette{
	CategoryScript:       PaletteBlue,
	CategoryGUI:          PalettePurple,
	CategoryTool:         PaletteGreen,
	CategoryGameMechanic: PaletteOrange,
	CategoryAnimation:    PalettePink,
	CategorySound:        PaletteCyan,
	CategoryOther:        PaletteGray,
}

// Known reports whether c has a dedicated display palette.
func (c Category) Known() bool {
	_, ok := categoryPalettes[c]
	return ok
}

// Badge returns the tag used for styling: c itself when known, otherwise CategoryOther.
func (c Category) Badge() Category {
	if c.Known() {
		return c
	}
	return CategoryOther
}

// Palette returns the colour family for the category badge.
func (c Category) Palette() Palette {
	return categoryPalettes[c.Badge()]
}

// Label is the human readable badge text ("game mechanic").
func (c Category) Label() string {
	if c == "" {
		return string(CategoryOther)
	}
	return strings.ReplaceAll(string(c), "_", " ")
}
