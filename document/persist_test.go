package document

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"texed/common"
	"texed/latex"
)

func TestSaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "document.yaml")

	d := Merge(testTemplate, nil)
	if err := d.AddSection("Zeta"); err != nil {
		t.Fatal(err)
	}
	if err := d.AddSection("Alpha"); err != nil {
		t.Fatal(err)
	}
	bodies := map[string]string{
		"Zeta":  "line one\n\tindented\n\ntrailing spaces  \n",
		"Alpha": "null",
	}
	for name, body := range bodies {
		if err := d.SetSection(name, body); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.Save(store); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := OpenWithTemplate(testTemplate, store)
	if err != nil {
		t.Fatalf("OpenWithTemplate() error = %v", err)
	}
	if got, want := reopened.ExportOrder(), d.ExportOrder(); !slices.Equal(got, want) {
		t.Fatalf("ExportOrder() = %v, want %v", got, want)
	}
	for name, body := range bodies {
		if got, _ := reopened.Section(name); got != body {
			t.Errorf("section %q = %q, want %q", name, got, body)
		}
	}
}

func TestSaveOpen_NonUTF8Text(t *testing.T) {
	store := filepath.Join(t.TempDir(), "document.yaml")

	d := Merge(testTemplate, nil)
	name := "Wst\xeap"
	body := "Za\xbf\xf3\xb3\xe6 g\xea\xb6l\xb9 ja\xbc\xf1\n" + strings.Repeat("\xb1", 100)
	if err := d.AddSection(name); err != nil {
		t.Fatal(err)
	}
	if err := d.AppendToSection(name, body); err != nil {
		t.Fatal(err)
	}
	if err := d.AppendToSection(Introduction, " \xe9t\xe9"); err != nil {
		t.Fatal(err)
	}
	if err := d.Save(store); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := OpenWithTemplate(testTemplate, store)
	if err != nil {
		t.Fatalf("OpenWithTemplate() error = %v", err)
	}
	if got, want := reopened.SectionOrder(), d.SectionOrder(); !slices.Equal(got, want) {
		t.Fatalf("SectionOrder() = %q, want %q", got, want)
	}
	for _, n := range []string{name, Introduction} {
		want, _ := d.Section(n)
		if got, _ := reopened.Section(n); got != want {
			t.Errorf("section %q = %q, want %q", n, got, want)
		}
	}
}

func TestSave_PersistsReservedSections(t *testing.T) {
	store := filepath.Join(t.TempDir(), "document.yaml")
	if err := Merge(testTemplate, nil).Save(store); err != nil {
		t.Fatal(err)
	}
	sections, err := ReadStore(store)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Name)
	}
	if want := []string{Preamble, Introduction, End}; !slices.Equal(names, want) {
		t.Fatalf("stored sections = %v, want %v", names, want)
	}
	if sections[2].Body != latex.EndDocument {
		t.Errorf("stored End = %q", sections[2].Body)
	}
}

func TestSave_CreatesMissingDirectory(t *testing.T) {
	store := filepath.Join(t.TempDir(), "new", "project", "document.yaml")
	if err := Merge(testTemplate, nil).Save(store); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(store); err != nil {
		t.Fatalf("store was not written: %v", err)
	}
}

func TestSave_Failure(t *testing.T) {
	dir := t.TempDir()
	// regular file where directory is expected
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	err := Merge(testTemplate, nil).Save(filepath.Join(blocker, "document.yaml"))
	if !errors.Is(err, common.ErrPersistence) {
		t.Fatalf("Save() error = %v, want ErrPersistence", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "start.tex")
	if err := os.WriteFile(tmpl, []byte(testTemplate), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("absent store", func(t *testing.T) {
		d, err := Open(tmpl, filepath.Join(dir, "missing.yaml"))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if want := []string{Preamble, Introduction, End}; !slices.Equal(d.ExportOrder(), want) {
			t.Errorf("ExportOrder() = %v, want %v", d.ExportOrder(), want)
		}
	})

	t.Run("missing template", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "nope.tex"), filepath.Join(dir, "missing.yaml"))
		if !errors.Is(err, common.ErrTemplateMissing) {
			t.Fatalf("Open() error = %v, want ErrTemplateMissing", err)
		}
	})

	t.Run("legacy json store", func(t *testing.T) {
		store := filepath.Join(dir, "data.json")
		data := `{"Preamble": "old", "Introduction": "hi", "Wyniki": "zażółć", "End": "x"}`
		if err := os.WriteFile(store, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		d, err := Open(tmpl, store)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if want := []string{Preamble, Introduction, "Wyniki", End}; !slices.Equal(d.ExportOrder(), want) {
			t.Errorf("ExportOrder() = %v, want %v", d.ExportOrder(), want)
		}
		if body, _ := d.Section("Wyniki"); body != "zażółć" {
			t.Errorf("Wyniki = %q", body)
		}
		if body, _ := d.Section(Preamble); body != testTemplate {
			t.Errorf("Preamble = %q, want template", body)
		}
	})

	t.Run("empty store", func(t *testing.T) {
		store := filepath.Join(dir, "empty.yaml")
		if err := os.WriteFile(store, []byte("\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Open(tmpl, store); err != nil {
			t.Fatalf("Open() error = %v", err)
		}
	})
}

func TestOpen_MalformedStore(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "Introduction: [unterminated"},
		{"not a mapping", "- a\n- b\n"},
		{"nested body", "Introduction:\n  nested: value\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := filepath.Join(t.TempDir(), "document.yaml")
			if err := os.WriteFile(store, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := OpenWithTemplate(testTemplate, store)
			if !errors.Is(err, common.ErrPersistence) {
				t.Fatalf("OpenWithTemplate() error = %v, want ErrPersistence", err)
			}
			if !strings.Contains(err.Error(), store) {
				t.Errorf("error %q does not name the store", err)
			}
		})
	}
}
