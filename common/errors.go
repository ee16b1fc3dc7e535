package common

import "errors"

// Kinds of failures reported by the document core. Concrete errors wrap one
// of these (and usually the underlying cause) so callers can use errors.Is
// to decide how to present them.
var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateSection     = errors.New("section already exists")
	ErrDuplicateFragment    = errors.New("fragment already exists")
	ErrProtectedSection     = errors.New("section is protected")
	ErrEmptyInput           = errors.New("empty input")
	ErrUnsupportedAssetType = errors.New("unsupported asset type")
	ErrAssetCopy            = errors.New("unable to copy asset")
	ErrPersistence          = errors.New("unable to persist data")
	ErrExport               = errors.New("unable to export document")
	ErrMalformedTableSource = errors.New("malformed table source")

	// ErrTemplateMissing means the program was installed without its
	// preamble template. This is a packaging problem, not a user error.
	ErrTemplateMissing = errors.New("preamble template is missing")
)
