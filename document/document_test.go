package document

import (
	"errors"
	"slices"
	"testing"

	"texed/common"
	"texed/latex"
)

const testTemplate = "\\documentclass{article}\n\\begin{document}\n"

func TestMerge_NewDocument(t *testing.T) {
	d := Merge(testTemplate, nil)

	want := []string{Preamble, Introduction, End}
	if got := d.ExportOrder(); !slices.Equal(got, want) {
		t.Fatalf("ExportOrder() = %v, want %v", got, want)
	}
	if body, _ := d.Section(Introduction); body != DefaultIntroduction {
		t.Errorf("Introduction = %q, want %q", body, DefaultIntroduction)
	}
	if body, _ := d.Section(End); body != latex.EndDocument {
		t.Errorf("End = %q, want %q", body, latex.EndDocument)
	}
	if body, _ := d.Section(Preamble); body != testTemplate {
		t.Errorf("Preamble = %q, want template", body)
	}
}

func TestMerge_CustomIntroduction(t *testing.T) {
	d := Merge(testTemplate, nil, WithIntroduction("Hello"))
	if body, _ := d.Section(Introduction); body != "Hello" {
		t.Errorf("Introduction = %q, want Hello", body)
	}
}

func TestMerge_Persisted(t *testing.T) {
	persisted := []Section{
		{Name: Preamble, Body: "stale preamble"},
		{Name: Introduction, Body: "intro text"},
		{Name: "Methods", Body: "m"},
		{Name: "Results", Body: "r"},
		{Name: End, Body: "garbage"},
	}
	d := Merge(testTemplate, persisted)

	want := []string{Preamble, Introduction, "Methods", "Results", End}
	if got := d.ExportOrder(); !slices.Equal(got, want) {
		t.Fatalf("ExportOrder() = %v, want %v", got, want)
	}
	if body, _ := d.Section(Preamble); body != testTemplate {
		t.Errorf("Preamble = %q, persisted value must be ignored", body)
	}
	if body, _ := d.Section(End); body != latex.EndDocument {
		t.Errorf("End = %q, persisted value must be ignored", body)
	}
	if body, _ := d.Section(Introduction); body != "intro text" {
		t.Errorf("Introduction = %q, persisted value must be kept", body)
	}
}

func TestMerge_MissingIntroductionGoesAfterPreamble(t *testing.T) {
	d := Merge(testTemplate, []Section{{Name: "Methods", Body: "m"}})

	want := []string{Preamble, Introduction, "Methods"}
	if got := d.SectionOrder(); !slices.Equal(got, want) {
		t.Fatalf("SectionOrder() = %v, want %v", got, want)
	}
}

func TestMerge_IntroductionKeepsStoredPosition(t *testing.T) {
	d := Merge(testTemplate, []Section{{Name: "Abstract", Body: "a"}, {Name: Introduction, Body: "i"}})

	want := []string{Preamble, "Abstract", Introduction, End}
	if got := d.ExportOrder(); !slices.Equal(got, want) {
		t.Fatalf("ExportOrder() = %v, want %v", got, want)
	}
}

func TestMerge_DoesNotAliasInput(t *testing.T) {
	persisted := []Section{{Name: "A", Body: "a"}}
	d := Merge(testTemplate, persisted)
	if err := d.AppendToSection("A", "more"); err != nil {
		t.Fatal(err)
	}
	if persisted[0].Body != "a" {
		t.Errorf("input was modified: %q", persisted[0].Body)
	}
}

func TestAddSection(t *testing.T) {
	d := Merge(testTemplate, nil)

	if err := d.AddSection("Methods"); err != nil {
		t.Fatalf("AddSection() error = %v", err)
	}
	want := []string{Preamble, Introduction, "Methods", End}
	if got := d.ExportOrder(); !slices.Equal(got, want) {
		t.Fatalf("ExportOrder() = %v, want %v", got, want)
	}
	if body, err := d.Section("Methods"); err != nil || body != "" {
		t.Errorf("Section(Methods) = %q, %v; want empty", body, err)
	}

	tests := []struct {
		name string
		in   string
		kind error
	}{
		{"duplicate", "Methods", common.ErrDuplicateSection},
		{"reserved preamble", Preamble, common.ErrDuplicateSection},
		{"reserved end", End, common.ErrDuplicateSection},
		{"empty", "", common.ErrEmptyInput},
		{"blank", "  \t", common.ErrEmptyInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := d.ExportOrder()
			err := d.AddSection(tt.in)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("AddSection(%q) error = %v, want %v", tt.in, err, tt.kind)
			}
			if got := d.ExportOrder(); !slices.Equal(got, before) {
				t.Errorf("document changed on failure: %v", got)
			}
		})
	}
}

func TestRemoveSection(t *testing.T) {
	d := Merge(testTemplate, []Section{{Name: "Methods"}, {Name: "Results"}})

	if err := d.RemoveSection("Methods"); err != nil {
		t.Fatalf("RemoveSection() error = %v", err)
	}
	want := []string{Preamble, Introduction, "Results", End}
	if got := d.ExportOrder(); !slices.Equal(got, want) {
		t.Fatalf("ExportOrder() = %v, want %v", got, want)
	}

	tests := []struct {
		name string
		in   string
		kind error
	}{
		{"preamble", Preamble, common.ErrProtectedSection},
		{"end", End, common.ErrProtectedSection},
		{"absent", "Methods", common.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.RemoveSection(tt.in); !errors.Is(err, tt.kind) {
				t.Fatalf("RemoveSection(%q) error = %v, want %v", tt.in, err, tt.kind)
			}
		})
	}

	if err := d.RemoveSection(Introduction); err != nil {
		t.Fatalf("Introduction must be removable: %v", err)
	}
}

func TestAddThenRemoveRestoresOrder(t *testing.T) {
	tests := []struct {
		name      string
		persisted []Section
		added     string
	}{
		{"new document", nil, "Methods"},
		{"persisted sections", []Section{{Name: "Methods", Body: "m"}, {Name: "Results"}}, "Discussion"},
		{"without introduction", []Section{{Name: Introduction}}, "Appendix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Merge(testTemplate, tt.persisted)
			before, beforeExport := d.SectionOrder(), d.ExportOrder()

			if err := d.AddSection(tt.added); err != nil {
				t.Fatalf("AddSection() error = %v", err)
			}
			if got := d.SectionOrder(); got[len(got)-1] != tt.added {
				t.Fatalf("SectionOrder() = %v, %q must be last", got, tt.added)
			}
			if err := d.RemoveSection(tt.added); err != nil {
				t.Fatalf("RemoveSection() error = %v", err)
			}

			if got := d.SectionOrder(); !slices.Equal(got, before) {
				t.Errorf("SectionOrder() = %v, want %v", got, before)
			}
			if got := d.ExportOrder(); !slices.Equal(got, beforeExport) {
				t.Errorf("ExportOrder() = %v, want %v", got, beforeExport)
			}
			if d.Has(tt.added) {
				t.Errorf("%q is still present", tt.added)
			}
		})
	}
}

func TestAppendAndSetSection(t *testing.T) {
	d := Merge(testTemplate, []Section{{Name: Introduction, Body: "a"}})

	if err := d.AppendToSection(Introduction, "b"); err != nil {
		t.Fatal(err)
	}
	if body, _ := d.Section(Introduction); body != "ab" {
		t.Errorf("Introduction = %q, want ab", body)
	}
	if err := d.SetSection(Introduction, "c"); err != nil {
		t.Fatal(err)
	}
	if body, _ := d.Section(Introduction); body != "c" {
		t.Errorf("Introduction = %q, want c", body)
	}

	if err := d.AppendToSection("Nope", "x"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("AppendToSection(absent) error = %v", err)
	}
	if err := d.SetSection("Nope", "x"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("SetSection(absent) error = %v", err)
	}
	if err := d.SetSection(Preamble, "x"); !errors.Is(err, common.ErrProtectedSection) {
		t.Errorf("SetSection(Preamble) error = %v", err)
	}
	if err := d.AppendToSection(End, "x"); !errors.Is(err, common.ErrProtectedSection) {
		t.Errorf("AppendToSection(End) error = %v", err)
	}
	if err := d.AppendToSection(Preamble, "% extra\n"); err != nil {
		t.Errorf("AppendToSection(Preamble) error = %v", err)
	}
}

func TestSectionNotFound(t *testing.T) {
	d := Merge(testTemplate, nil)
	if _, err := d.Section("Nope"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Section(absent) error = %v", err)
	}
}

func TestSectionsIncludesEndLast(t *testing.T) {
	d := Merge(testTemplate, []Section{{Name: "A", Body: "a"}})
	sections := d.Sections()
	if len(sections) != 4 {
		t.Fatalf("got %d sections, want 4", len(sections))
	}
	if sections[0].Name != Preamble || sections[len(sections)-1] != (Section{Name: End, Body: latex.EndDocument}) {
		t.Errorf("unexpected boundaries: %+v", sections)
	}
}
