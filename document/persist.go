package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"texed/common"
)

// Open reads preamble template and persisted sections and merges them.
func Open(templatePath, storePath string, opts ...Option) (*Document, error) {
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read template %q: %w: %w", templatePath, common.ErrTemplateMissing, err)
	}
	return OpenWithTemplate(string(template), storePath, opts...)
}

// OpenWithTemplate reads persisted sections and merges them with already
// loaded preamble template. Absent store is the same as empty one.
func OpenWithTemplate(template, storePath string, opts ...Option) (*Document, error) {
	persisted, err := ReadStore(storePath)
	if err != nil {
		return nil, err
	}
	return Merge(template, persisted, opts...), nil
}

// ReadStore returns sections persisted at path in stored order. Missing file
// results in no sections. Both YAML and JSON stores are accepted.
func ReadStore(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read document %q: %w: %w", path, common.ErrPersistence, err)
	}
	sections, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode document %q: %w: %w", path, common.ErrPersistence, err)
	}
	return sections, nil
}

func decode(data []byte) ([]Section, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: sections must be a mapping", mapping.Line)
	}

	sections := make([]Section, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: section name must be a string", key.Line)
		}
		name, err := scalarText(key)
		if err != nil {
			return nil, fmt.Errorf("line %d: section name: %w", key.Line, err)
		}
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: section %q body must be a string", value.Line, name)
		}
		body, err := scalarText(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: section %q body: %w", value.Line, name, err)
		}
		sections = append(sections, Section{Name: name, Body: body})
	}
	return sections, nil
}

// scalarText returns text of scalar node. Encoder keeps strings which are not
// valid UTF-8 as base64 "!!binary", they are returned as original bytes.
func scalarText(n *yaml.Node) (string, error) {
	switch n.ShortTag() {
	case "!!null":
		return "", nil
	case "!!binary":
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return n.Value, nil
}

func (d *Document) encode() ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range d.Sections() {
		key, value := &yaml.Node{}, &yaml.Node{}
		key.SetString(s.Name)
		value.SetString(s.Body)
		mapping.Content = append(mapping.Content, key, value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes all sections including Preamble and End to path. When
// destination directory does not exist it is created and write is retried
// once.
func (d *Document) Save(path string) error {
	data, err := d.encode()
	if err != nil {
		return fmt.Errorf("unable to encode document: %w: %w", common.ErrPersistence, err)
	}

	err = os.WriteFile(path, data, 0644)
	if errors.Is(err, fs.ErrNotExist) {
		if err = os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			err = os.WriteFile(path, data, 0644)
		}
	}
	if err != nil {
		return fmt.Errorf("unable to save document %q: %w: %w", path, common.ErrPersistence, err)
	}
	return nil
}
