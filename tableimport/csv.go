package tableimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"texed/common"
)

// CSVSheetName is name of the only sheet produced from delimited text.
const CSVSheetName = "sheet1"

// Options describe delimited text source.
type Options struct {
	Delimiter common.Delimiter
	Decimal   common.Decimal
	// Charset is IANA name of the source character set, empty for UTF-8.
	Charset string
}

// commaNumber matches numeric values written with comma as decimal separator.
var commaNumber = regexp.MustCompile(`^[+-]?[0-9]*,[0-9]+([eE][+-]?[0-9]+)?$`)

// ReadCSV reads delimited text. First record is the header, every record must
// have the same number of fields. When decimal separator is comma numeric
// values are converted to dot notation.
func ReadCSV(r io.Reader, opts Options) (*Workbook, error) {
	if opts.Delimiter.Rune() == opts.Decimal.Rune() {
		return nil, fmt.Errorf("delimiter and decimal separator are both %q: %w", opts.Delimiter.Rune(), common.ErrMalformedTableSource)
	}

	enc, err := sourceEncoding(opts.Charset)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())))
	cr.Comma = opts.Delimiter.Rune()

	var grid [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read delimited text: %w: %w", common.ErrMalformedTableSource, err)
		}
		if opts.Decimal == common.DecimalComma && len(grid) > 0 {
			for i, cell := range record {
				if commaNumber.MatchString(strings.TrimSpace(cell)) {
					record[i] = strings.Replace(strings.TrimSpace(cell), ",", ".", 1)
				}
			}
		}
		grid = append(grid, record)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("delimited text is empty: %w", common.ErrMalformedTableSource)
	}
	return &Workbook{Sheets: []Sheet{{Name: CSVSheetName, Table: tableFromGrid(grid)}}}, nil
}

func sourceEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown character set %q: %w: %w", name, common.ErrMalformedTableSource, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported character set %q: %w", name, common.ErrMalformedTableSource)
	}
	return enc, nil
}
