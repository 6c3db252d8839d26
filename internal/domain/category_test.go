package domain_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		prompt string
		want   domain.Category
	}{
		{prompt: "Make a teleport GUI with buttons", want: domain.CategoryGUI},
		{prompt: "add a BUTTON", want: domain.CategoryGUI},
		{prompt: "gui tool", want: domain.CategoryGUI},
		{prompt: "a sword weapon", want: domain.CategoryTool},
		{prompt: "Make a double jump script", want: domain.CategoryGameMechanic},
		{prompt: "jump animation", want: domain.CategoryGameMechanic},
		{prompt: "wall walk mechanic", want: domain.CategoryGameMechanic},
		{prompt: "play an Animation on spawn", want: domain.CategoryAnimation},
		{prompt: "background music", want: domain.CategorySound},
		{prompt: "explosion sound", want: domain.CategorySound},
		{prompt: "do something neutral", want: domain.CategoryScript},
		{prompt: "", want: domain.CategoryScript},
		// substring matching is deliberate: "build" contains "ui"
		{prompt: "build a house", want: domain.CategoryGUI},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			gt.Value(t, domain.Classify(tt.prompt)).Equal(tt.want)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	prompts := []string{"Create a coin collect system with leaderstats", "weapon sound", "x"}
	for _, p := range prompts {
		first := domain.Classify(p)
		for i := 0; i < 5; i++ {
			gt.Value(t, domain.Classify(p)).Equal(first)
		}
	}
}

func TestCategoryDisplay(t *testing.T) {
	t.Run("label replaces underscores", func(t *testing.T) {
		gt.Value(t, domain.CategoryGameMechanic.Label()).Equal("game mechanic")
		gt.Value(t, domain.Category("very_custom_tag").Label()).Equal("very custom tag")
		gt.Value(t, domain.Category("").Label()).Equal("other")
	})

	t.Run("unknown category falls back to other", func(t *testing.T) {
		unknown := domain.Category("vehicle")
		gt.Bool(t, unknown.Known()).False()
		gt.Value(t, unknown.Badge()).Equal(domain.CategoryOther)
		gt.Value(t, unknown.Palette()).Equal(domain.PaletteGray)
	})

	t.Run("known palettes", func(t *testing.T) {
		gt.Value(t, domain.CategoryScript.Palette()).Equal(domain.PaletteBlue)
		gt.Value(t, domain.CategoryGUI.Palette()).Equal(domain.PalettePurple)
		gt.Value(t, domain.CategoryTool.Palette()).Equal(domain.PaletteGreen)
		gt.Value(t, domain.CategoryGameMechanic.Palette()).Equal(domain.PaletteOrange)
		gt.Value(t, domain.CategoryAnimation.Palette()).Equal(domain.PalettePink)
		gt.Value(t, domain.CategorySound.Palette()).Equal(domain.PaletteCyan)
	})
}
