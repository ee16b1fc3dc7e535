package tableimport

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"texed/common"
)

const (
	testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`

	testWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="Pomiary" sheetId="1" r:id="rId2"/>
    <sheet name="Summary" sheetId="2" r:id="rId1"/>
  </sheets>
</workbook>`

	testRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/sheet1.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/>
</Relationships>`

	testSharedStrings = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="4" uniqueCount="4">
  <si><t>time</t></si>
  <si><t>value</t></si>
  <si><r><t>rich </t></r><r><rPr><b/></rPr><t>text</t></r></si>
  <si><t xml:space="preserve"> spaced </t><rPh><t>ignored</t></rPh></si>
</sst>`

	testSheet1 = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="inlineStr"><is><t>note</t></is></c></row>
    <row r="2"><c r="A2"><v>1.5</v></c><c r="B2"><v>42</v></c><c r="C2" t="s"><v>2</v></c></row>
    <row r="4"><c r="A4" t="b"><v>1</v></c><c r="C4" t="s"><v>3</v></c></row>
  </sheetData>
</worksheet>`

	testSheet2 = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1" t="inlineStr"><is><t>total</t></is></c></row>
    <row r="2"><c r="A2" t="str"><f>SUM(Pomiary!B:B)</f><v>42</v></c></row>
  </sheetData>
</worksheet>`
)

func writeXLSX(t *testing.T, parts map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "book.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range parts {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func testParts() map[string]string {
	return map[string]string{
		"[Content_Types].xml":        testContentTypes,
		"xl/workbook.xml":            testWorkbook,
		"xl/_rels/workbook.xml.rels": testRels,
		"xl/sharedStrings.xml":       testSharedStrings,
		"xl/worksheets/sheet1.xml":   testSheet1,
		"xl/worksheets/sheet2.xml":   testSheet2,
	}
}

func TestReadXLSX(t *testing.T) {
	wb, err := ReadXLSX(writeXLSX(t, testParts()))
	if err != nil {
		t.Fatalf("ReadXLSX() error = %v", err)
	}
	if names := wb.Names(); !slices.Equal(names, []string{"Pomiary", "Summary"}) {
		t.Fatalf("Names() = %v, want workbook order", names)
	}

	first, err := wb.Sheet("Pomiary")
	if err != nil {
		t.Fatal(err)
	}
	assertTable(t, first, []string{"time", "value", "note"}, [][]string{
		{"1.5", "42", "rich text"},
		{"", "", ""},
		{"TRUE", "", " spaced "},
	})

	second, err := wb.Sheet("Summary")
	if err != nil {
		t.Fatal(err)
	}
	assertTable(t, second, []string{"total"}, [][]string{{"42"}})

	if def, _ := wb.Sheet(""); def != first {
		t.Errorf("empty name must select first sheet")
	}
}

func TestReadXLSX_WithoutRelationships(t *testing.T) {
	parts := testParts()
	delete(parts, "xl/_rels/workbook.xml.rels")

	wb, err := ReadXLSX(writeXLSX(t, parts))
	if err != nil {
		t.Fatalf("ReadXLSX() error = %v", err)
	}
	// positional fallback: first sheet entry reads sheet1.xml
	table, _ := wb.Sheet("Pomiary")
	if table.ColsNum() != 3 {
		t.Errorf("ColsNum() = %d, want 3", table.ColsNum())
	}
}

func TestReadXLSX_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		modify func(map[string]string)
	}{
		{"no workbook", func(p map[string]string) { delete(p, "xl/workbook.xml") }},
		{"missing sheet part", func(p map[string]string) { delete(p, "xl/worksheets/sheet2.xml") }},
		{"broken xml", func(p map[string]string) { p["xl/worksheets/sheet1.xml"] = "<worksheet><sheetData>" }},
		{"bad shared index", func(p map[string]string) { delete(p, "xl/sharedStrings.xml") }},
		{"no sheets", func(p map[string]string) {
			p["xl/workbook.xml"] = `<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheets/></workbook>`
		}},
		{"bad cell reference", func(p map[string]string) {
			p["xl/worksheets/sheet2.xml"] = `<worksheet><sheetData><row r="1"><c r="11"><v>1</v></c></row></sheetData></worksheet>`
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := testParts()
			tt.modify(parts)
			_, err := ReadXLSX(writeXLSX(t, parts))
			if !errors.Is(err, common.ErrMalformedTableSource) {
				t.Fatalf("ReadXLSX() error = %v, want ErrMalformedTableSource", err)
			}
		})
	}

	t.Run("not an archive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "book.xlsx")
		if err := os.WriteFile(path, []byte("a,b\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFile(path, Options{}); !errors.Is(err, common.ErrMalformedTableSource) {
			t.Fatalf("ReadFile() error = %v, want ErrMalformedTableSource", err)
		}
	})
}

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		ref  string
		want int
	}{
		{"A1", 0},
		{"b7", 1},
		{"Z10", 25},
		{"AA1", 26},
		{"AB100", 27},
		{"XFD1048576", 16383},
	}
	for _, tt := range tests {
		got, err := columnIndex(tt.ref)
		if err != nil || got != tt.want {
			t.Errorf("columnIndex(%q) = %d, %v; want %d", tt.ref, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "A", "12", "A1B"} {
		if _, err := columnIndex(bad); err == nil {
			t.Errorf("columnIndex(%q) expected error", bad)
		}
	}
}
