package google

import (
	"fmt"
	"strconv"
	"strings"

	"finboard/internal/sheets"
)

// tabIndex maps record ids to 1-based row numbers. count is the number of
// rows in use, header included.
type tabIndex struct {
	ids   map[int64]int
	count int
}

// buildIndex reads a column A values matrix as returned by the Sheets API.
// Row 1 is the header; blank and non-numeric cells are skipped but still
// occupy their row.
func buildIndex(values [][]any) *tabIndex {
	idx := &tabIndex{ids: make(map[int64]int), count: len(values)}
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		idx.ids[id] = i + 1
	}
	return idx
}

func rowRange(tab string, row int) string {
	last := string(rune('A' + len(sheets.Header) - 1))
	return fmt.Sprintf("%s!A%d:%s%d", tab, row, last, row)
}

func toValues(cells []string) []any {
	out := make([]any, len(cells))
	for i, v := range cells {
		out[i] = v
	}
	return out
}
