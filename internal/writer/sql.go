package writer

import (
	"fmt"
	"strings"

	"github.com/rickgao/binance-collector/internal/model"
)

// quoteIdent double-quotes an identifier. Mixed-case columns such as
// lastUpdateId must keep their case.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// insertStatement builds a single-row INSERT for rs's table. placeholder
// returns the bind marker for the 1-based argument position.
func insertStatement(rs model.RowSet, placeholder func(int) string) string {
	cols := make([]string, len(rs.Columns))
	marks := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		cols[i] = quoteIdent(c)
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(rs.Kind.Table()),
		strings.Join(cols, ", "),
		strings.Join(marks, ", "),
	)
}

func dollarPlaceholder(i int) string { return fmt.Sprintf("$%d", i) }

func questionPlaceholder(int) string { return "?" }
