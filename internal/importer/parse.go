package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultColumnTolerance is the share of data rows allowed to disagree with
// the header's column count before the file is rejected.
const DefaultColumnTolerance = 0.2

// Row is one data line keyed by header.
type Row struct {
	Line   int
	Fields map[string]string
	byKey  map[string]string
	index  *headerIndex
}

// Get returns the trimmed value of column, matched accent- and
// punctuation-insensitively against the header.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Raw(column))
}

// Raw returns the untrimmed value of column.
func (r Row) Raw(column string) string {
	key, ok := r.index.resolve(column)
	if !ok {
		return ""
	}
	return r.byKey[key]
}

// Table is the tokenized content of an export.
type Table struct {
	Header []string
	Rows   []Row
	// Ragged counts rows whose field count differs from the header.
	Ragged int
	index  *headerIndex
}

// HasColumn reports whether the header contains column.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index.resolve(column)
	return ok
}

// headerIndex resolves logical column names to header keys. Headers that
// lost characters to U+FFFD during decoding match any character there.
type headerIndex struct {
	keys  map[string]bool
	fuzzy []fuzzyHeader
}

type fuzzyHeader struct {
	re  *regexp.Regexp
	key string
}

func newHeaderIndex(header []string) *headerIndex {
	idx := &headerIndex{keys: make(map[string]bool, len(header))}
	for _, h := range header {
		if h == "" {
			continue
		}
		key := columnKey(h)
		idx.keys[key] = true
		if strings.ContainsRune(h, utf8.RuneError) {
			idx.fuzzy = append(idx.fuzzy, fuzzyHeader{re: fuzzyPattern(h), key: key})
		}
	}
	return idx
}

func (idx *headerIndex) resolve(column string) (string, bool) {
	if column == "" || idx == nil {
		return "", false
	}
	key := columnKey(column)
	if idx.keys[key] {
		return key, true
	}
	for _, f := range idx.fuzzy {
		if f.re.MatchString(key) {
			return f.key, true
		}
	}
	return "", false
}

func fuzzyPattern(h string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range Fold(RepairHeader(h)) {
		switch {
		case r == utf8.RuneError:
			b.WriteString(".")
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// Parse tokenizes text into rows using delimiter. Header cells are repaired
// with RepairHeader. Blank lines are skipped. tolerance is the allowed share
// of rows with a mismatched column count; a negative value disables the check.
func Parse(text string, delimiter rune, tolerance float64) (*Table, error) {
	if countNonBlankLines(text) < 2 {
		return nil, &ParseError{Reason: "input needs a header line and at least one data line"}
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headerRec, err := r.Read()
	if err != nil {
		return nil, &ParseError{Line: 1, Reason: "reading header", Err: err}
	}

	t := &Table{}
	for _, h := range headerRec {
		t.Header = append(t.Header, RepairHeader(h))
	}
	t.Header = trimTrailingEmpty(t.Header)
	t.index = newHeaderIndex(t.Header)
	if len(t.Header) < 2 {
		return nil, &ParseError{Line: 1, Reason: fmt.Sprintf("header has %d column(s); wrong delimiter %q?", len(t.Header), delimiter)}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			line := 0
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return nil, &ParseError{Line: line, Reason: "tokenizing row", Err: err}
		}
		if isBlankRecord(rec) {
			continue
		}
		line, _ := r.FieldPos(0)

		if len(rec) < len(t.Header) || len(trimTrailingEmpty(rec)) > len(t.Header) {
			t.Ragged++
		}

		row := Row{
			Line:   line,
			Fields: make(map[string]string, len(t.Header)),
			byKey:  make(map[string]string, len(t.Header)),
			index:  t.index,
		}
		for i, h := range t.Header {
			if h == "" {
				continue
			}
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			row.Fields[h] = v
			row.byKey[columnKey(h)] = v
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, &ParseError{Reason: "no data rows after header"}
	}
	if tolerance >= 0 {
		share := float64(t.Ragged) / float64(len(t.Rows))
		if share > tolerance {
			return nil, &ParseError{Reason: fmt.Sprintf(
				"%d of %d rows have a column count different from the header (%d); check the delimiter",
				t.Ragged, len(t.Rows), len(t.Header))}
		}
	}
	return t, nil
}

func countNonBlankLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

func isBlankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func trimTrailingEmpty(rec []string) []string {
	for len(rec) > 0 && strings.TrimSpace(rec[len(rec)-1]) == "" {
		rec = rec[:len(rec)-1]
	}
	return rec
}
