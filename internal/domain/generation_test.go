package domain_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

func TestAnnotateArtifact(t *testing.T) {
	got := domain.AnnotateArtifact("StarterPlayer.StarterCharacterScripts", domain.KindLocalScript, "-- jump code")
	gt.Value(t, got).Equal("-- Go in: StarterPlayer.StarterCharacterScripts\n-- This is a: LocalScript\n\n-- jump code")
}

func TestParseArtifact(t *testing.T) {
	t.Run("round trips an annotated artifact", func(t *testing.T) {
		code := "local x = 1\nprint(x)\n"
		placement, kind, body, ok := domain.ParseArtifact(domain.AnnotateArtifact("ServerScriptService", domain.KindScript, code))
		gt.Bool(t, ok).True()
		gt.Value(t, placement).Equal("ServerScriptService")
		gt.Value(t, kind).Equal(domain.KindScript)
		gt.Value(t, body).Equal(code)
	})

	t.Run("rejects text without header", func(t *testing.T) {
		_, _, body, ok := domain.ParseArtifact("print('hi')")
		gt.Bool(t, ok).False()
		gt.Value(t, body).Equal("print('hi')")
	})

	t.Run("rejects header without blank separator", func(t *testing.T) {
		_, _, _, ok := domain.ParseArtifact("-- Go in: Workspace\n-- This is a: Script\nprint(1)")
		gt.Bool(t, ok).False()
	})
}

func TestBuildGeneration(t *testing.T) {
	gen := domain.BuildGeneration("Make a double jump script", domain.ScriptResult{
		Code:       "-- jump code",
		ScriptType: "LocalScript",
		Location:   " StarterPlayer.StarterCharacterScripts ",
	})

	gt.Value(t, gen.Prompt).Equal("Make a double jump script")
	gt.Value(t, gen.ArtifactKind).Equal(domain.KindLocalScript)
	gt.Value(t, gen.Placement).Equal("StarterPlayer.StarterCharacterScripts")
	gt.Value(t, gen.Category).Equal(domain.CategoryGameMechanic)
	gt.String(t, gen.Artifact).Contains("-- Go in: StarterPlayer.StarterCharacterScripts\n")
	gt.String(t, gen.Artifact).Contains("-- This is a: LocalScript\n\n-- jump code")

	created := time.Date(2026, 3, 4, 15, 4, 0, 0, time.UTC)
	rec := gen.Record("id-1", created)
	gt.Value(t, rec.ID).Equal("id-1")
	gt.Value(t, rec.CreatedAt).Equal(created)
	gt.Value(t, domain.ViewOf(rec).Artifact).Equal(gen.Artifact)
}

func TestScriptResultMissing(t *testing.T) {
	gt.Array(t, domain.ScriptResult{Code: "x", ScriptType: "Script", Location: "Workspace"}.Missing()).Length(0)
	gt.Array(t, domain.ScriptResult{Code: "x", ScriptType: " "}.Missing()).Length(2)
	gt.Array(t, domain.ScriptResult{}.Missing()).Has("location")
}

func TestArtifactKind(t *testing.T) {
	gt.Bool(t, domain.KindModuleScript.Known()).True()
	gt.Bool(t, domain.ArtifactKind("Plugin").Known()).False()
	gt.Value(t, domain.ArtifactKind("Plugin").Palette()).Equal(domain.PaletteGray)
	gt.Value(t, domain.KindLocalScript.FileName()).Equal("LocalScript.lua")
	gt.Value(t, domain.ArtifactKind("").FileName()).Equal("Script.lua")
}

func TestExamplePromptsAreCopies(t *testing.T) {
	examples := domain.ExamplePrompts()
	gt.Array(t, examples).Length(4)
	examples[0].Text = "changed"
	gt.Value(t, domain.ExamplePrompts()[0].Text).Equal("Make a double jump script")
}
