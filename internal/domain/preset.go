package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Preset is a one-click edit instruction.
type Preset struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

var presets = []Preset{
	{ID: "cartoon", Prompt: "Transform this image into a colorful 3D Pixar-style cartoon."},
	{ID: "cyberpunk", Prompt: "Convert this photo to a cyberpunk aesthetic with neon lights and dark rainy atmosphere."},
	{ID: "oil-painting", Prompt: "Turn this photo into a classic Impressionist oil painting with visible brushstrokes."},
	{ID: "sunny-day", Prompt: "Make it look like a bright sunny day with warm lighting and blue skies."},
}

var titleCaser = cases.Title(language.English)

func init() {
	for i := range presets {
		presets[i].Label = titleCaser.String(strings.ReplaceAll(presets[i].ID, "-", " "))
	}
}

// Presets returns the quick styles in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByID looks up a preset, ignoring case and surrounding space.
func PresetByID(id string) (Preset, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range presets {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, ErrUnknownPreset
}
