package tableimport

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"texed/archive"
	"texed/common"
)

const (
	workbookPart      = "xl/workbook.xml"
	workbookRelsPart  = "xl/_rels/workbook.xml.rels"
	sharedStringsPart = "xl/sharedStrings.xml"
)

// ReadXLSX reads every worksheet of Office Open XML workbook in workbook
// order. First row of each sheet is its header.
func ReadXLSX(file string) (*Workbook, error) {
	parts, err := archive.Parts(file, "xl/")
	if err != nil {
		return nil, fmt.Errorf("unable to read workbook %q: %w: %w", file, common.ErrMalformedTableSource, err)
	}
	wb, err := parseWorkbook(parts)
	if err != nil {
		return nil, fmt.Errorf("unable to parse workbook %q: %w: %w", file, common.ErrMalformedTableSource, err)
	}
	return wb, nil
}

func parseWorkbook(parts map[string][]byte) (*Workbook, error) {
	book, err := readXML(parts, workbookPart)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("missing %s", workbookPart)
	}

	targets := make(map[string]string)
	if rels, err := readXML(parts, workbookRelsPart); err != nil {
		return nil, err
	} else if rels != nil {
		for _, rel := range rels.FindElements("//Relationship") {
			targets[rel.SelectAttrValue("Id", "")] = partName(rel.SelectAttrValue("Target", ""))
		}
	}

	shared, err := sharedStrings(parts)
	if err != nil {
		return nil, err
	}

	wb := &Workbook{}
	for i, s := range book.FindElements("//sheets/sheet") {
		name := s.SelectAttrValue("name", fmt.Sprintf("Sheet%d", i+1))
		target, ok := targets[relationID(s)]
		if !ok {
			target = fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
		}
		sheet, err := readXML(parts, target)
		if err != nil {
			return nil, err
		}
		if sheet == nil {
			return nil, fmt.Errorf("sheet %q: missing %s", name, target)
		}
		grid, err := sheetGrid(sheet, shared)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Table: tableFromGrid(grid)})
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("no worksheets found")
	}
	return wb, nil
}

// readXML returns nil document when part is absent.
func readXML(parts map[string][]byte, name string) (*etree.Document, error) {
	data, ok := parts[name]
	if !ok {
		return nil, nil
	}
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", name, err)
	}
	return doc, nil
}

// partName resolves relationship target relative to workbook part.
func partName(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(workbookPart), target)
}

// relationID finds "r:id" attribute regardless of prefix used by producer.
func relationID(sheet *etree.Element) string {
	for _, a := range sheet.Attr {
		if a.Key == "id" && a.Space != "" {
			return a.Value
		}
	}
	return ""
}

func sharedStrings(parts map[string][]byte) ([]string, error) {
	doc, err := readXML(parts, sharedStringsPart)
	if err != nil || doc == nil {
		return nil, err
	}
	var strs []string
	for _, si := range doc.FindElements("//sst/si") {
		strs = append(strs, richText(si))
	}
	return strs, nil
}

// richText joins plain text and text runs, phonetic hints are ignored.
func richText(e *etree.Element) string {
	var b strings.Builder
	for _, c := range e.ChildElements() {
		switch c.Tag {
		case "t":
			b.WriteString(c.Text())
		case "r":
			if t := c.SelectElement("t"); t != nil {
				b.WriteString(t.Text())
			}
		}
	}
	return b.String()
}

func sheetGrid(sheet *etree.Document, shared []string) ([][]string, error) {
	var grid [][]string
	for ri, row := range sheet.FindElements("//sheetData/row") {
		index := ri
		if r := row.SelectAttrValue("r", ""); r != "" {
			n, err := strconv.Atoi(r)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid row number %q", r)
			}
			index = n - 1
		}
		for len(grid) <= index {
			grid = append(grid, nil)
		}

		var cells []string
		for ci, c := range row.SelectElements("c") {
			col := ci
			if ref := c.SelectAttrValue("r", ""); ref != "" {
				var err error
				if col, err = columnIndex(ref); err != nil {
					return nil, err
				}
			}
			for len(cells) <= col {
				cells = append(cells, "")
			}
			value, err := cellValue(c, shared)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", c.SelectAttrValue("r", strconv.Itoa(ci)), err)
			}
			cells[col] = value
		}
		grid[index] = cells
	}

	width := 0
	for _, cells := range grid {
		width = max(width, len(cells))
	}
	for i := range grid {
		if len(grid[i]) < width {
			grid[i] = append(grid[i], make([]string, width-len(grid[i]))...)
		}
	}
	return grid, nil
}

func cellValue(c *etree.Element, shared []string) (string, error) {
	var v string
	if e := c.SelectElement("v"); e != nil {
		v = e.Text()
	}
	switch c.SelectAttrValue("t", "n") {
	case "s":
		idx, err := strconv.Atoi(v)
		if err != nil || idx < 0 || idx >= len(shared) {
			return "", fmt.Errorf("invalid shared string index %q", v)
		}
		return shared[idx], nil
	case "inlineStr":
		if is := c.SelectElement("is"); is != nil {
			return richText(is), nil
		}
		return "", nil
	case "b":
		if v == "1" {
			return "TRUE", nil
		}
		return "FALSE", nil
	default:
		return v, nil
	}
}

// columnIndex converts cell reference like "AB12" to zero based column
// number.
func columnIndex(ref string) (int, error) {
	col := 0
	i := 0
	for ; i < len(ref); i++ {
		ch := ref[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			break
		}
		col = col*26 + int(ch-'A') + 1
	}
	if i == 0 || i == len(ref) {
		return 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	if _, err := strconv.Atoi(ref[i:]); err != nil {
		return 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	return col - 1, nil
}
