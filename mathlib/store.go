package mathlib

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"texed/common"
)

// Store gives access to fragments persisted in the shared settings file.
// Settings file may contain other application settings, they are preserved
// when fragments are added.
//
// Access through a single Store is serialized. Nothing protects the file from
// other processes: two programs defining fragments at the same time may lose
// one of the updates (last write wins).
type Store struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

// NewStore returns store backed by settings file at path. File does not have
// to exist, it is created on first Define.
func NewStore(path string, log *zap.Logger) *Store {
	return &Store{path: path, log: log.Named("mathlib")}
}

// Path returns location of the settings file.
func (s *Store) Path() string {
	return s.path
}

// Fragment is named math body.
type Fragment struct {
	Name string
	Body string
}

// Load returns all fragments of the kind in natural name order.
func (s *Store) Load(kind Kind) ([]Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load()
	if err != nil {
		return nil, err
	}
	lib, err := s.library(root, kind, false)
	if err != nil || lib == nil {
		return nil, err
	}
	frags := make([]Fragment, 0, len(lib.Content)/2)
	for i := 0; i+1 < len(lib.Content); i += 2 {
		name, err := s.text(kind, lib.Content[i])
		if err != nil {
			return nil, err
		}
		body, err := s.text(kind, lib.Content[i+1])
		if err != nil {
			return nil, err
		}
		frags = append(frags, Fragment{Name: name, Body: body})
	}
	sort.Slice(frags, func(i, j int) bool { return natural.Less(frags[i].Name, frags[j].Name) })
	return frags, nil
}

// Names returns names of all fragments of the kind in natural order.
func (s *Store) Names(kind Kind) ([]string, error) {
	frags, err := s.Load(kind)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(frags))
	for _, f := range frags {
		names = append(names, f.Name)
	}
	return names, nil
}

// Fragment returns body of the named fragment.
func (s *Store) Fragment(kind Kind, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load()
	if err != nil {
		return "", err
	}
	lib, err := s.library(root, kind, false)
	if err != nil {
		return "", err
	}
	body, ok, err := s.lookup(kind, lib, name)
	if err != nil {
		return "", err
	}
	if ok {
		return body, nil
	}
	return "", fmt.Errorf("%s fragment %q: %w", kind, name, common.ErrNotFound)
}

// Render returns named fragment wrapped into its kind environment.
func (s *Store) Render(kind Kind, name, label string) (string, error) {
	body, err := s.Fragment(kind, name)
	if err != nil {
		return "", err
	}
	return kind.Render(body, label), nil
}

// Define adds new fragment and immediately persists settings file.
// Fragments are immutable once named: existing name is never overwritten.
func (s *Store) Define(kind Kind, name, body string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s fragment name: %w", kind, common.ErrEmptyInput)
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%s fragment %q body: %w", kind, name, common.ErrEmptyInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// always start from what is on disk now
	root, err := s.load()
	if err != nil {
		return err
	}
	lib, err := s.library(root, kind, true)
	if err != nil {
		return err
	}
	if _, ok, err := s.lookup(kind, lib, name); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%s fragment %q: %w", kind, name, common.ErrDuplicateFragment)
	}

	k, v := new(yaml.Node), new(yaml.Node)
	k.SetString(name)
	v.SetString(body)
	lib.Content = append(lib.Content, k, v)

	if err := s.save(root); err != nil {
		return err
	}
	s.log.Debug("Fragment defined", zap.Stringer("kind", kind), zap.String("name", name))
	return nil
}

// load reads settings file returning its top level mapping node.
func (s *Store) load() (*yaml.Node, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read settings %q: %w: %w", s.path, common.ErrPersistence, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unable to parse settings %q: %w: %w", s.path, common.ErrPersistence, err)
	}
	if doc.Kind == 0 {
		// empty file
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("settings %q must be a mapping: %w", s.path, common.ErrPersistence)
	}
	return doc.Content[0], nil
}

func (s *Store) save(root *yaml.Node) error {
	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return fmt.Errorf("unable to encode settings: %w: %w", common.ErrPersistence, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to encode settings: %w: %w", common.ErrPersistence, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("unable to create settings directory: %w: %w", common.ErrPersistence, err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("unable to write settings %q: %w: %w", s.path, common.ErrPersistence, err)
	}
	return nil
}

// library returns mapping node keeping fragments of the kind, creating it
// when requested. Null value is treated as empty library, any other value
// which is not a mapping is never overwritten.
func (s *Store) library(root *yaml.Node, kind Kind, create bool) (*yaml.Node, error) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != kind.Key() {
			continue
		}
		lib := root.Content[i+1]
		switch {
		case lib.Kind == yaml.MappingNode:
			return lib, nil
		case lib.Kind == yaml.ScalarNode && lib.ShortTag() == "!!null":
			if !create {
				return nil, nil
			}
			root.Content[i+1] = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			return root.Content[i+1], nil
		}
		return nil, fmt.Errorf("settings %q line %d: key %q must be a mapping: %w", s.path, lib.Line, kind.Key(), common.ErrPersistence)
	}
	if !create {
		return nil, nil
	}
	k := new(yaml.Node)
	k.SetString(kind.Key())
	lib := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	root.Content = append(root.Content, k, lib)
	return lib, nil
}

func (s *Store) lookup(kind Kind, lib *yaml.Node, name string) (string, bool, error) {
	if lib == nil {
		return "", false, nil
	}
	for i := 0; i+1 < len(lib.Content); i += 2 {
		key, err := s.text(kind, lib.Content[i])
		if err != nil {
			return "", false, err
		}
		if key != name {
			continue
		}
		body, err := s.text(kind, lib.Content[i+1])
		return body, err == nil, err
	}
	return "", false, nil
}

// text returns fragment name or body. Strings which are not valid UTF-8 are
// kept by encoder as base64 "!!binary", original bytes are returned for them.
func (s *Store) text(kind Kind, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("settings %q line %d: %s fragment must be a string: %w", s.path, n.Line, kind, common.ErrPersistence)
	}
	switch n.ShortTag() {
	case "!!null":
		return "", nil
	case "!!binary":
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return "", fmt.Errorf("settings %q line %d: %w: %w", s.path, n.Line, common.ErrPersistence, err)
		}
		return string(data), nil
	}
	return n.Value, nil
}
