// Package mathlib keeps library of reusable math fragments. Fragments are
// named LaTeX bodies stored in a settings file shared by all projects, they
// are rendered into equation or displaymath blocks when inserted into a
// document.
package mathlib

import (
	"fmt"
	"strings"
)

// Kind selects one of independent fragment libraries. Each kind knows its
// settings store key and the environment it renders fragments into.
type Kind struct {
	key     string
	env     string
	split   bool
	labeled bool
}

var (
	// Equation fragments are rendered as numbered equations with label.
	Equation = Kind{key: "equations", env: "equation", labeled: true}
	// DisplayMath fragments are rendered unnumbered, body is wrapped in
	// split environment so it could span several aligned lines.
	DisplayMath = Kind{key: "displaymath", env: "displaymath", split: true}
)

// Kinds returns all known fragment kinds.
func Kinds() []Kind {
	return []Kind{Equation, DisplayMath}
}

// ParseKind accepts either store key ("equations") or environment name
// ("equation") of the kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(name, k.key) || strings.EqualFold(name, k.env) {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("%s is not a valid math kind, try [equation, displaymath]", name)
}

// Key returns name of the settings store key holding fragments of this kind.
func (k Kind) Key() string {
	return k.key
}

func (k Kind) String() string {
	return k.env
}

// Render wraps fragment body into the kind environment.
func (k Kind) Render(body, label string) string {
	var b strings.Builder
	b.WriteString("\n\\begin{" + k.env + "}\n")
	switch {
	case k.split:
		b.WriteString("\t\\begin{split}\n")
		b.WriteString("\t\t" + body + "\n")
		b.WriteString("\t\\end{split}\n")
	case k.labeled:
		b.WriteString("\t\\label{" + label + "}\n")
		b.WriteString("\t" + body + "\n")
	default:
		b.WriteString("\t" + body + "\n")
	}
	b.WriteString("\\end{" + k.env + "}")
	return b.String()
}
