package domain

import (
	"errors"
	"testing"
)

func TestPresetsHaveLabelsAndPrompts(t *testing.T) {
	got := Presets()
	if len(got) != 4 {
		t.Fatalf("len(Presets()) = %d, want 4", len(got))
	}
	wantLabels := []string{"Cartoon", "Cyberpunk", "Oil Painting", "Sunny Day"}
	for i, p := range got {
		if p.Label != wantLabels[i] {
			t.Fatalf("Presets()[%d].Label = %q, want %q", i, p.Label, wantLabels[i])
		}
		if p.Prompt == "" {
			t.Fatalf("preset %q has no prompt", p.ID)
		}
	}
}

func TestPresetsReturnsCopy(t *testing.T) {
	got := Presets()
	got[0].Prompt = "mutated"
	if Presets()[0].Prompt == "mutated" {
		t.Fatal("Presets() exposed internal slice")
	}
}

func TestPresetByID(t *testing.T) {
	p, err := PresetByID("  Oil-Painting ")
	if err != nil {
		t.Fatalf("PresetByID returned error: %v", err)
	}
	if p.ID != "oil-painting" {
		t.Fatalf("ID = %q", p.ID)
	}

	if _, err := PresetByID("watercolor"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("err = %v, want ErrUnknownPreset", err)
	}
}
