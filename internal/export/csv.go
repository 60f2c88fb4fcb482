package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"slotbook/internal/models"
)

const addressColumn = 3

// CSV writes a header line and exactly one physical line per booking. Line breaks
// inside a field become single spaces. The address is always quoted; other
// fields are quoted only when they contain a separator or a quote.
func CSV(w io.Writer, view []models.Booking) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range view {
		fields := row(&view[i])
		for j, f := range fields {
			f = singleLine(f)
			fields[j] = f
			if j == addressColumn || strings.ContainsAny(f, ",\"") {
				fields[j] = quote(f)
			}
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
