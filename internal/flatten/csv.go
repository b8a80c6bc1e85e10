// Package flatten converts TABLE report dumps into CSV files for
// spreadsheet use and optionally loads them into a report database.
package flatten

import (
	"bufio"
	"io"
	"strings"

	"github.com/starford/metaviz/internal/report"
)

// Separator is the CSV field separator.
const Separator = ';'

var bom = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes t as CSV: UTF-8 byte order mark, semicolon separated,
// every field quoted, CRLF line endings, null cells empty.
func WriteCSV(w io.Writer, t *report.Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(bom); err != nil {
		return err
	}
	if err := writeRecord(bw, t.Headers); err != nil {
		return err
	}
	for _, row := range t.StringRows() {
		if err := writeRecord(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(Separator); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(f)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
