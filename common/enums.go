// Package common keeps small types shared between the document core and the
// command line shell: error kinds and separator enums.
package common

import (
	"fmt"
	"strings"
)

// Field delimiter of delimited text table sources.
// ENUM(comma, dot, tab, semicolon)
type Delimiter int

const (
	DelimiterComma Delimiter = iota
	DelimiterDot
	DelimiterTab
	DelimiterSemicolon
)

var delimiterNames = []string{"comma", "dot", "tab", "semicolon"}

func (d Delimiter) String() string {
	if d < 0 || int(d) >= len(delimiterNames) {
		return fmt.Sprintf("Delimiter(%d)", int(d))
	}
	return delimiterNames[d]
}

// Rune returns actual separator character.
func (d Delimiter) Rune() rune {
	switch d {
	case DelimiterDot:
		return '.'
	case DelimiterTab:
		return '\t'
	case DelimiterSemicolon:
		return ';'
	default:
		return ','
	}
}

// DelimiterNames returns list of possible string values of Delimiter.
func DelimiterNames() []string {
	return append([]string(nil), delimiterNames...)
}

// ParseDelimiter attempts to convert a string to a Delimiter.
func ParseDelimiter(name string) (Delimiter, error) {
	for i, n := range delimiterNames {
		if strings.EqualFold(n, name) {
			return Delimiter(i), nil
		}
	}
	return DelimiterComma, fmt.Errorf("%s is not a valid Delimiter, try [%s]", name, strings.Join(delimiterNames, ", "))
}

// Decimal separator of numeric values in delimited text table sources.
// ENUM(dot, comma)
type Decimal int

const (
	DecimalDot Decimal = iota
	DecimalComma
)

var decimalNames = []string{"dot", "comma"}

func (d Decimal) String() string {
	if d < 0 || int(d) >= len(decimalNames) {
		return fmt.Sprintf("Decimal(%d)", int(d))
	}
	return decimalNames[d]
}

// Rune returns actual separator character.
func (d Decimal) Rune() rune {
	if d == DecimalComma {
		return ','
	}
	return '.'
}

// DecimalNames returns list of possible string values of Decimal.
func DecimalNames() []string {
	return append([]string(nil), decimalNames...)
}

// ParseDecimal attempts to convert a string to a Decimal.
func ParseDecimal(name string) (Decimal, error) {
	for i, n := range decimalNames {
		if strings.EqualFold(n, name) {
			return Decimal(i), nil
		}
	}
	return DecimalDot, fmt.Errorf("%s is not a valid Decimal, try [%s]", name, strings.Join(decimalNames, ", "))
}

// How labels of generated figure, table and math blocks are produced.
// ENUM(placeholder, unique)
type LabelMode int

const (
	LabelModePlaceholder LabelMode = iota
	LabelModeUnique
)

var labelModeNames = []string{"placeholder", "unique"}

func (m LabelMode) String() string {
	if m < 0 || int(m) >= len(labelModeNames) {
		return fmt.Sprintf("LabelMode(%d)", int(m))
	}
	return labelModeNames[m]
}

// ParseLabelMode attempts to convert a string to a LabelMode.
func ParseLabelMode(name string) (LabelMode, error) {
	for i, n := range labelModeNames {
		if strings.EqualFold(n, name) {
			return LabelMode(i), nil
		}
	}
	return LabelModePlaceholder, fmt.Errorf("%s is not a valid LabelMode, try [%s]", name, strings.Join(labelModeNames, ", "))
}

// MarshalText implements the text marshaller method.
func (m LabelMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements the text unmarshaller method.
func (m *LabelMode) UnmarshalText(text []byte) error {
	v, err := ParseLabelMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
