package latex

import (
	"strings"

	"github.com/google/uuid"
)

// EndDocument is closing marker of every generated document.
const EndDocument = `\end{document}`

// PlaceholderLabel is used for all generated blocks unless unique labels
// were requested.
const PlaceholderLabel = "mylabel"

// Label prefixes of generated blocks.
const (
	FigurePrefix   = "fig"
	TablePrefix    = "tab"
	EquationPrefix = "eq"
)

// Labeler produces label for a generated block of the given kind.
type Labeler func(prefix string) string

// Placeholder always returns the same label.
func Placeholder(string) string {
	return PlaceholderLabel
}

// Unique returns distinct label for every call.
func Unique(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + ":" + id.String()
}

// SectionHeading returns heading block a user section starts with in the
// exported document.
func SectionHeading(name string) string {
	return `\section{` + name + "}\n"
}

// Figure returns figure block referencing asset at 75% of text width.
// Caption is not parameterized, callers wanting distinct caption have to
// edit the block.
func Figure(asset, label string) string {
	var b strings.Builder
	b.WriteString("\n\\begin{figure}[h!]\n")
	b.WriteString("\t\\centering\n")
	b.WriteString("\t\\includegraphics[width=.75\\textwidth]{" + asset + "}\n")
	b.WriteString("\t\\caption{caption}\n")
	b.WriteString("\t\\label{" + label + "}\n")
	b.WriteString("\\end{figure}")
	return b.String()
}
