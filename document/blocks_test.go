package document

import (
	"errors"
	"strings"
	"testing"

	"texed/common"
	"texed/latex"
	"texed/mathlib"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(sourcePath, assetName, destFolder string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return latex.Figure(assetName, latex.PlaceholderLabel), nil
}

type fakeRenderer map[string]string

func (f fakeRenderer) Render(kind mathlib.Kind, name, label string) (string, error) {
	body, ok := f[name]
	if !ok {
		return "", common.ErrNotFound
	}
	return kind.Render(body, label), nil
}

func TestAppendFigure(t *testing.T) {
	d := Merge(testTemplate, []Section{{Name: "Methods", Body: "text"}})
	e := &fakeEmbedder{}

	if err := d.AppendFigure(e, "/tmp/a.png", "a.png", "/proj", "Methods"); err != nil {
		t.Fatalf("AppendFigure() error = %v", err)
	}
	body, _ := d.Section("Methods")
	if want := "text" + latex.Figure("a.png", latex.PlaceholderLabel); body != want {
		t.Errorf("Methods = %q, want %q", body, want)
	}

	t.Run("absent target does not embed", func(t *testing.T) {
		e := &fakeEmbedder{}
		if err := d.AppendFigure(e, "/tmp/a.png", "a.png", "/proj", "Nope"); !errors.Is(err, common.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
		if e.calls != 0 {
			t.Errorf("embedder was called %d times", e.calls)
		}
	})

	t.Run("embed failure leaves section intact", func(t *testing.T) {
		e := &fakeEmbedder{err: common.ErrUnsupportedAssetType}
		before, _ := d.Section("Methods")
		if err := d.AppendFigure(e, "/tmp/a.gif", "a.gif", "/proj", "Methods"); !errors.Is(err, common.ErrUnsupportedAssetType) {
			t.Fatalf("error = %v, want ErrUnsupportedAssetType", err)
		}
		if after, _ := d.Section("Methods"); after != before {
			t.Errorf("section changed on failure")
		}
	})
}

func TestAppendTable(t *testing.T) {
	d := Merge(testTemplate, nil)
	table := &latex.Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}

	if err := d.AppendTable(table, Introduction); err != nil {
		t.Fatalf("AppendTable() error = %v", err)
	}
	body, _ := d.Section(Introduction)
	if want := DefaultIntroduction + latex.RenderTable(table, latex.PlaceholderLabel); body != want {
		t.Errorf("Introduction = %q, want %q", body, want)
	}
	if err := d.AppendTable(table, "Nope"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("AppendTable(absent) error = %v", err)
	}
}

func TestAppendTable_UniqueLabels(t *testing.T) {
	d := Merge(testTemplate, nil, WithLabels(latex.Unique), WithIntroduction(""))
	table := &latex.Table{Columns: []string{"a"}}

	for range 2 {
		if err := d.AppendTable(table, Introduction); err != nil {
			t.Fatal(err)
		}
	}
	body, _ := d.Section(Introduction)
	if n := strings.Count(body, `\label{`+latex.TablePrefix+":"); n != 2 {
		t.Fatalf("found %d unique table labels, want 2", n)
	}
	if strings.Contains(body, latex.PlaceholderLabel) {
		t.Errorf("placeholder label used in unique mode")
	}
}

func TestAppendMath(t *testing.T) {
	lib := fakeRenderer{"pythagoras": "a^2 + b^2 = c^2"}
	d := Merge(testTemplate, nil, WithIntroduction(""))

	if err := d.AppendMath(lib, mathlib.Equation, "pythagoras", Introduction); err != nil {
		t.Fatalf("AppendMath() error = %v", err)
	}
	body, _ := d.Section(Introduction)
	if want := mathlib.Equation.Render("a^2 + b^2 = c^2", latex.PlaceholderLabel); body != want {
		t.Errorf("Introduction = %q, want %q", body, want)
	}

	if err := d.AppendMath(lib, mathlib.Equation, "missing", Introduction); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("AppendMath(missing fragment) error = %v", err)
	}
	if after, _ := d.Section(Introduction); after != body {
		t.Errorf("section changed on failure")
	}
	if err := d.AppendMath(lib, mathlib.Equation, "pythagoras", End); !errors.Is(err, common.ErrProtectedSection) {
		t.Errorf("AppendMath(End) error = %v", err)
	}
}
