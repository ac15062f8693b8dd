// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/insight-engine/pkg/types"
)

func newTestInferencer(t *testing.T) *Inferencer {
	t.Helper()
	return NewInferencer(NewRegistry(), types.PersonaConfig{MinHintOverlap: 1})
}

func sectionsWithText(texts ...string) []types.Section {
	sections := make([]types.Section, len(texts))
	for i, txt := range texts {
		sections[i] = types.Section{Title: "Section", BodyText: txt, PageNumber: i + 1}
	}
	return sections
}

func TestNormalizeHint(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Researcher", "researcher"},
		{"PhD Researcher", "phd_researcher"},
		{"business-analyst", "business_analyst"},
		{"  Travel  Planner ", "travel_planner"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeHint(tc.in); got != tc.want {
			t.Errorf("NormalizeHint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInferHintExactMatch(t *testing.T) {
	inf := newTestInferencer(t)

	name, profile := inf.Infer(nil, "Researcher")
	if name != "researcher" {
		t.Errorf("persona = %q, want researcher", name)
	}
	if profile.PersonaType != "researcher" {
		t.Errorf("profile = %q, want researcher", profile.PersonaType)
	}
}

func TestInferHintKeywordOverlap(t *testing.T) {
	inf := newTestInferencer(t)

	// "PhD Researcher" is not a registered identifier but shares a word
	// with the researcher profile; the hint is kept verbatim.
	name, profile := inf.Infer(nil, "PhD Researcher")
	if name != "phd_researcher" {
		t.Errorf("persona = %q, want phd_researcher", name)
	}
	if profile.PersonaType != "researcher" {
		t.Errorf("bound profile = %q, want researcher", profile.PersonaType)
	}
}

func TestInferHintNoOverlapFallsBackToGeneral(t *testing.T) {
	inf := newTestInferencer(t)

	name, profile := inf.Infer(nil, "Submarine Captain")
	if name != "submarine_captain" {
		t.Errorf("persona = %q, want submarine_captain", name)
	}
	if profile.PersonaType != GeneralPersona {
		t.Errorf("profile = %q, want general", profile.PersonaType)
	}
}

func TestInferFromContent(t *testing.T) {
	inf := newTestInferencer(t)

	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "research paper",
			text: "The study presents a methodology for analyzing experiment results. Our hypothesis was confirmed by the data and findings.",
			want: "researcher",
		},
		{
			name: "travel guide",
			text: "The hotel sits near the main attraction. Local cuisine and culture make this destination ideal for any vacation.",
			want: "travel_planner",
		},
		{
			name: "no matching terms",
			text: "zxq qvw plmn okrt yuio",
			want: GeneralPersona,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			name, profile := inf.Infer(sectionsWithText(tc.text), "")
			if name != tc.want {
				t.Errorf("persona = %q, want %q", name, tc.want)
			}
			if profile.PersonaType != tc.want {
				t.Errorf("profile = %q, want %q", profile.PersonaType, tc.want)
			}
		})
	}
}

func TestInferEmptyContentNoHint(t *testing.T) {
	inf := newTestInferencer(t)

	name, profile := inf.Infer(nil, "")
	if name != GeneralPersona || profile.PersonaType != GeneralPersona {
		t.Errorf("empty input should resolve to general, got %q / %q", name, profile.PersonaType)
	}
}

func TestLoadRegistryFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	doc := `profiles:
  - persona_type: archivist
    focus_areas: [preservation, cataloging]
    expertise_level: advanced
    custom_keywords: [archive, record, collection]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	p, ok := reg.Lookup("archivist")
	if !ok {
		t.Fatal("archivist profile not found after load")
	}
	if len(p.CustomKeywords) != 3 {
		t.Errorf("custom keywords = %v", p.CustomKeywords)
	}
}

func TestLoadRegistryEmptyPathUsesBuiltins(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Profiles()) != 7 {
		t.Errorf("builtin profile count = %d, want 7", len(reg.Profiles()))
	}
}

func TestLoadRegistryRejectsMissingPersonaType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	doc := `profiles:
  - focus_areas: [misc]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatal("expected error for profile without persona_type")
	}
}
