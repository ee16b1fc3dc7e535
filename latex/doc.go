// Package latex produces LaTeX markup blocks for document content: section
// headings, tables, figures and labels. It never parses markup and does not
// escape anything, callers are responsible for sanitizing cell and caption
// text containing LaTeX special characters.
package latex
