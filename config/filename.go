package config

import (
	"strings"
	"unicode"
)

// texSpecial are characters pdflatex does not accept in job and \input file
// names.
const texSpecial = "%#$&~^{}\\ "

const badFileName = "_bad_file_name_"

// CleanFileName makes name usable both on the current platform and as LaTeX
// job name: characters file system does not allow are dropped, characters
// special to LaTeX become underscores.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		switch {
		case unicode.IsControl(sym) || strings.ContainsRune(forbiddenChars, sym):
			return -1
		case strings.ContainsRune(texSpecial, sym) || unicode.IsSpace(sym):
			return '_'
		}
		return sym
	}, in)
	// hidden files are never exported
	out = strings.TrimLeft(out, ".")
	if len(out) == 0 {
		return badFileName
	}
	return out
}
