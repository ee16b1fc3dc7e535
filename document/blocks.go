package document

import (
	"fmt"

	"texed/latex"
	"texed/mathlib"
)

// FigureEmbedder copies figure asset and produces figure block.
type FigureEmbedder interface {
	Embed(sourcePath, assetName, destFolder string) (string, error)
}

// MathRenderer produces math block from named fragment.
type MathRenderer interface {
	Render(kind mathlib.Kind, name, label string) (string, error)
}

// AppendFigure copies figure into destFolder and appends its block to the
// target section. Target is checked before anything is copied.
func (d *Document) AppendFigure(e FigureEmbedder, sourcePath, assetName, destFolder, target string) error {
	if err := d.checkWritable(target); err != nil {
		return err
	}
	block, err := e.Embed(sourcePath, assetName, destFolder)
	if err != nil {
		return fmt.Errorf("unable to embed figure into section %q: %w", target, err)
	}
	d.bodies[target] += block
	return nil
}

// AppendTable renders table and appends it to the target section.
func (d *Document) AppendTable(t *latex.Table, target string) error {
	if err := d.checkWritable(target); err != nil {
		return err
	}
	d.bodies[target] += latex.RenderTable(t, d.labels(latex.TablePrefix))
	return nil
}

// AppendMath renders named math fragment and appends it to the target
// section.
func (d *Document) AppendMath(r MathRenderer, kind mathlib.Kind, name, target string) error {
	if err := d.checkWritable(target); err != nil {
		return err
	}
	block, err := r.Render(kind, name, d.labels(latex.EquationPrefix))
	if err != nil {
		return fmt.Errorf("unable to insert %s %q into section %q: %w", kind, name, target, err)
	}
	d.bodies[target] += block
	return nil
}
