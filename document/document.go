// Package document keeps in-memory state of an edited document: ordered set
// of named sections between fixed preamble and closing boilerplate.
//
// Document is not safe for concurrent use. Nothing is persisted implicitly,
// callers decide when to Save.
package document

import (
	"fmt"
	"slices"
	"strings"

	"texed/common"
	"texed/latex"
)

// Reserved section names.
const (
	// Preamble is always first, it is refreshed from template every time
	// document is opened.
	Preamble = "Preamble"
	// Introduction is seeded with placeholder text for new documents only.
	Introduction = "Introduction"
	// End is always last and always holds closing marker of the document.
	End = "End"
)

// DefaultIntroduction is placeholder text of Introduction section of a newly
// created document.
const DefaultIntroduction = "Start writing your document here."

// Section is a named block of document text.
type Section struct {
	Name string
	Body string
}

// Document is ordered collection of uniquely named sections.
type Document struct {
	// insertion order of all sections except End, Preamble is always first
	order  []string
	bodies map[string]string
	labels latex.Labeler
}

// Option modifies how documents are created.
type Option func(*options)

type options struct {
	intro  string
	labels latex.Labeler
}

// WithIntroduction sets placeholder text of Introduction section seeded into
// new documents.
func WithIntroduction(text string) Option {
	return func(o *options) {
		o.intro = text
	}
}

// WithLabels sets how labels of generated table and math blocks are produced.
func WithLabels(l latex.Labeler) Option {
	return func(o *options) {
		if l != nil {
			o.labels = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{intro: DefaultIntroduction, labels: latex.Placeholder}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Merge builds document from preamble template and previously persisted
// sections. Preamble always comes from template and End is always the closing
// marker - persisted values of both are ignored. Other persisted sections are
// kept verbatim in their stored order. Introduction is inserted right after
// Preamble when persisted data does not have it.
func Merge(template string, persisted []Section, opts ...Option) *Document {
	o := newOptions(opts)

	d := &Document{
		order:  []string{Preamble},
		bodies: map[string]string{Preamble: template, End: latex.EndDocument},
		labels: o.labels,
	}

	hasIntro := slices.ContainsFunc(persisted, func(s Section) bool { return s.Name == Introduction })
	if !hasIntro {
		d.order = append(d.order, Introduction)
		d.bodies[Introduction] = o.intro
	}

	for _, s := range persisted {
		if s.Name == Preamble || s.Name == End {
			continue
		}
		if _, exists := d.bodies[s.Name]; !exists {
			d.order = append(d.order, s.Name)
		}
		// duplicated keys in persisted data - last one wins, first position is kept
		d.bodies[s.Name] = s.Body
	}
	return d
}

// Has reports whether section exists.
func (d *Document) Has(name string) bool {
	_, ok := d.bodies[name]
	return ok
}

// Section returns body of the named section.
func (d *Document) Section(name string) (string, error) {
	body, ok := d.bodies[name]
	if !ok {
		return "", fmt.Errorf("section %q: %w", name, common.ErrNotFound)
	}
	return body, nil
}

// SectionOrder returns names of all sections except End, Preamble first.
func (d *Document) SectionOrder() []string {
	return slices.Clone(d.order)
}

// ExportOrder returns names of all sections in the order they appear in
// generated document: Preamble first, End last.
func (d *Document) ExportOrder() []string {
	names := make([]string, 0, len(d.order)+1)
	names = append(names, Preamble)
	for _, name := range d.order {
		if name != Preamble && name != End {
			names = append(names, name)
		}
	}
	return append(names, End)
}

// Sections returns all sections in export order.
func (d *Document) Sections() []Section {
	names := d.ExportOrder()
	sections := make([]Section, 0, len(names))
	for _, name := range names {
		sections = append(sections, Section{Name: name, Body: d.bodies[name]})
	}
	return sections
}

// AddSection appends new empty section.
func (d *Document) AddSection(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("section name: %w", common.ErrEmptyInput)
	}
	if d.Has(name) {
		return fmt.Errorf("section %q: %w", name, common.ErrDuplicateSection)
	}
	d.order = append(d.order, name)
	d.bodies[name] = ""
	return nil
}

// RemoveSection removes section. Preamble and End could never be removed.
// Selecting another section in the editor is up to the caller.
func (d *Document) RemoveSection(name string) error {
	if name == Preamble || name == End {
		return fmt.Errorf("section %q: %w", name, common.ErrProtectedSection)
	}
	if !d.Has(name) {
		return fmt.Errorf("section %q: %w", name, common.ErrNotFound)
	}
	d.order = slices.DeleteFunc(d.order, func(n string) bool { return n == name })
	delete(d.bodies, name)
	return nil
}

// AppendToSection adds text to the end of the section body.
func (d *Document) AppendToSection(name, text string) error {
	if err := d.checkWritable(name); err != nil {
		return err
	}
	d.bodies[name] += text
	return nil
}

// SetSection replaces body of a user section, this is what editor does when
// user text is saved.
func (d *Document) SetSection(name, body string) error {
	if name == Preamble {
		return fmt.Errorf("section %q: %w", name, common.ErrProtectedSection)
	}
	if err := d.checkWritable(name); err != nil {
		return err
	}
	d.bodies[name] = body
	return nil
}

// checkWritable makes sure section exists and could be modified. End is
// recomputed on every open, anything added to it would be lost.
func (d *Document) checkWritable(name string) error {
	if name == End {
		return fmt.Errorf("section %q: %w", name, common.ErrProtectedSection)
	}
	if !d.Has(name) {
		return fmt.Errorf("section %q: %w", name, common.ErrNotFound)
	}
	return nil
}
