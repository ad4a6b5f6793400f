package prefs

import (
	"strings"

	"github.com/mj1618/patternpilot/internal/outcome"
)

// RowSeparator splits the fields of an about:config row copied to the
// clipboard. The layout of that text is owned by the browser; a change there
// shows up here as a ProtocolFormat error.
const RowSeparator = ";"

// Row is one about:config entry as copied from the page.
type Row struct {
	Name  string
	Value string
	// Extra holds any fields after the value, unparsed.
	Extra []string
}

// ParseRow parses the copied text of the row for key. The value is the
// second field, taken verbatim; a value that itself contains the separator
// cannot be told apart from extra fields and is cut at the first one. Text
// with fewer than two fields, or a row for a different preference, is a
// ProtocolFormat error.
func ParseRow(key, text string) (Row, error) {
	const action = "parse preference row"
	fields := strings.Split(text, RowSeparator)
	if len(fields) < 2 {
		return Row{}, outcome.NewFormat(action, "expected name%svalue for %s, got %q", RowSeparator, key, text)
	}
	row := Row{
		Name:  strings.TrimSpace(fields[0]),
		Value: fields[1],
		Extra: fields[2:],
	}
	if row.Name != "" && row.Name != key {
		return Row{}, outcome.NewFormat(action, "copied row is for %s, not %s", row.Name, key)
	}
	return row, nil
}
