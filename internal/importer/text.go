package importer

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText turns raw export bytes into a UTF-8 string. Exports saved by
// spreadsheet tools on Windows arrive as Windows-1252; anything that is not
// valid UTF-8 is decoded that way.
func DecodeText(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(decoded)
}

// mojibake maps UTF-8 accented letters that were read back as Latin-1.
// Pairs are compared in argument order, so "Ã\u00a0" must precede the bare
// non-breaking space entry.
var mojibake = strings.NewReplacer(
	"Ã\u00ad", "í",
	"Ã£", "ã",
	"Ã³", "ó",
	"Ã§", "ç",
	"Ã©", "é",
	"Ãª", "ê",
	"Ã¡", "á",
	"Ãº", "ú",
	"Ã¢", "â",
	"Ãµ", "õ",
	"Ã´", "ô",
	"Ã¨", "è",
	"Ã¼", "ü",
	"Ã‰", "É",
	"Ã“", "Ó",
	"Ã‡", "Ç",
	"Ãƒ", "Ã",
	"Ã\u0081", "Á",
	"Ã\u008d", "Í",
	"Ã\u00a0", "à",
	"\ufeff", "",
	"\u00a0", "",
)

// RepairHeader restores mis-encoded accents and strips BOM and non-breaking
// space artifacts from a header cell.
func RepairHeader(h string) string {
	return strings.TrimSpace(mojibake.Replace(h))
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and strips diacritics so that "Manutenção" and
// "MANUTENCAO" compare equal.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// columnKey reduces a header to letters and digits after folding. Cells that
// lost an accent to a replacement character still match their column.
func columnKey(h string) string {
	folded := Fold(RepairHeader(h))
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// leadingIndent counts leading whitespace, expanding tabs to four spaces.
func leadingIndent(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ', '\u00a0':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
