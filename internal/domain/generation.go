package domain

import (
	"fmt"
	"strings"
	"time"
)

// ArtifactKind is the Roblox script class a generated artifact runs as.
type ArtifactKind string

const (
	KindScript       ArtifactKind = "Script"
	KindLocalScript  ArtifactKind = "LocalScript"
	KindModuleScript ArtifactKind = "ModuleScript"
)

// Known reports whether k is one of the three Roblox script classes.
func (k ArtifactKind) Known() bool {
	switch k {
	case KindScript, KindLocalScript, KindModuleScript:
		return true
	}
	return false
}

// Palette returns the colour family used for the kind badge.
func (k ArtifactKind) Palette() Palette {
	switch k {
	case KindScript:
		return PaletteGreen
	case KindLocalScript:
		return PaletteBlue
	case KindModuleScript:
		return PalettePurple
	default:
		return PaletteGray
	}
}

// FileName is the suggested file name when the artifact is written to disk.
func (k ArtifactKind) FileName() string {
	if k == "" {
		return string(KindScript) + ".lua"
	}
	return string(k) + ".lua"
}

// GenerationRecord is one persisted generation. Records are never edited
// after creation; a newer generation replaces, it does not update.
type GenerationRecord struct {
	ID           string       `json:"id" yaml:"id"`
	Prompt       string       `json:"prompt" yaml:"prompt"`
	Artifact     string       `json:"artifact" yaml:"artifact"`
	ArtifactKind ArtifactKind `json:"artifact_kind" yaml:"artifact_kind"`
	Placement    string       `json:"placement" yaml:"placement"`
	Category     Category     `json:"category" yaml:"category"`
	CreatedAt    time.Time    `json:"created_at" yaml:"created_at"`
}

// NewGeneration is the input of a store create call. The store assigns ID and CreatedAt.
type NewGeneration struct {
	Prompt       string       `json:"prompt"`
	Artifact     string       `json:"artifact"`
	ArtifactKind ArtifactKind `json:"artifact_kind"`
	Placement    string       `json:"placement"`
	Category     Category     `json:"category"`
}

// Record materialises the input with the identity assigned by a store.
func (n NewGeneration) Record(id string, createdAt time.Time) GenerationRecord {
	return GenerationRecord{
		ID:           id,
		Prompt:       n.Prompt,
		Artifact:     n.Artifact,
		ArtifactKind: n.ArtifactKind,
		Placement:    n.Placement,
		Category:     n.Category,
		CreatedAt:    createdAt,
	}
}

// Timestamp renders CreatedAt the way history lists show it ("Jan 2, 3:04 PM").
func (r GenerationRecord) Timestamp() string {
	return r.CreatedAt.Local().Format(HistoryTimestampLayout)
}

// ScriptResult is the structured triple returned by a generation service.
type ScriptResult struct {
	Code       string
	ScriptType string
	Location   string
}

// Missing lists the names of empty required fields.
func (r ScriptResult) Missing() []string {
	var missing []string
	if strings.TrimSpace(r.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(r.ScriptType) == "" {
		missing = append(missing, "script_type")
	}
	if strings.TrimSpace(r.Location) == "" {
		missing = append(missing, "location")
	}
	return missing
}

const (
	placementPrefix = "-- Go in: "
	kindPrefix      = "-- This is a: "
)

// AnnotateArtifact prefixes code with the placement and kind header lines
// followed by a blank line. Downstream copy and display rely on this layout.
func AnnotateArtifact(placement string, kind ArtifactKind, code string) string {
	return fmt.Sprintf("%s%s\n%s%s\n\n%s", placementPrefix, placement, kindPrefix, kind, code)
}

// ParseArtifact splits an annotated artifact into its header fields and raw code.
// ok is false when the header lines are not present.
func ParseArtifact(artifact string) (placement string, kind ArtifactKind, code string, ok bool) {
	parts := strings.SplitN(artifact, "\n", 4)
	if len(parts) < 3 {
		return "", "", artifact, false
	}
	if !strings.HasPrefix(parts[0], placementPrefix) || !strings.HasPrefix(parts[1], kindPrefix) || parts[2] != "" {
		return "", "", artifact, false
	}
	if len(parts) == 4 {
		code = parts[3]
	}
	return strings.TrimPrefix(parts[0], placementPrefix), ArtifactKind(strings.TrimPrefix(parts[1], kindPrefix)), code, true
}

// BuildGeneration assembles the store input for a successful service result.
func BuildGeneration(prompt string, result ScriptResult) NewGeneration {
	kind := ArtifactKind(strings.TrimSpace(result.ScriptType))
	placement := strings.TrimSpace(result.Location)
	return NewGeneration{
		Prompt:       prompt,
		Artifact:     AnnotateArtifact(placement, kind, result.Code),
		ArtifactKind: kind,
		Placement:    placement,
		Category:     Classify(prompt),
	}
}

// DisplayView is what the user currently sees: a copy of the selected record's fields.
type DisplayView struct {
	RecordID     string       `json:"record_id"`
	Prompt       string       `json:"prompt"`
	Artifact     string       `json:"artifact"`
	ArtifactKind ArtifactKind `json:"artifact_kind"`
	Placement    string       `json:"placement"`
	Category     Category     `json:"category"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ViewOf projects a record into a DisplayView.
func ViewOf(r GenerationRecord) DisplayView {
	return DisplayView{
		RecordID:     r.ID,
		Prompt:       r.Prompt,
		Artifact:     r.Artifact,
		ArtifactKind: r.ArtifactKind,
		Placement:    r.Placement,
		Category:     r.Category,
		CreatedAt:    r.CreatedAt,
	}
}

// Draft holds a generation whose persistence failed, kept for a manual retry.
type Draft struct {
	Key        string        `json:"key"`
	Generation NewGeneration `json:"generation"`
	FailedAt   time.Time     `json:"failed_at"`
	Reason     string        `json:"reason"`
}
