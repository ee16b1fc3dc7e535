package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"texed/config"
	"texed/document"
)

// DefaultOutputName is used when output name template is empty or expands
// to nothing.
const DefaultOutputName = "main"

// Values is a struct that holds variables we make available for output name
// template expansion.
type Values struct {
	Context  string
	Project  string
	Sections []string
	Date     string
}

// NewValues prepares template variables for exported document.
func NewValues(doc *document.Document, projectDir string, now time.Time) Values {
	var sections []string
	for _, name := range doc.ExportOrder() {
		if name != document.Preamble && name != document.End {
			sections = append(sections, name)
		}
	}
	return Values{
		Context:  string(config.OutputNameTemplateFieldName),
		Project:  filepath.Base(filepath.Clean(projectDir)),
		Sections: sections,
		Date:     now.Format("2006-01-02"),
	}
}

// OutputName expands output name template, result is cleaned up to be usable
// as a file name.
func OutputName(field string, values Values) (string, error) {
	if strings.TrimSpace(field) == "" {
		return DefaultOutputName, nil
	}

	tmpl, err := template.New(string(config.OutputNameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", config.OutputNameTemplateFieldName, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand template field %s: %w", config.OutputNameTemplateFieldName, err)
	}

	name := strings.TrimSpace(buf.String())
	if name == "" {
		return DefaultOutputName, nil
	}
	return config.CleanFileName(name), nil
}
