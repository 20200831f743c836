package model

import "fmt"

// MetricKind is one of the seven metric families collected per cycle.
type MetricKind int

const (
	ServerTime MetricKind = iota
	Candle
	OrderBookSnapshot
	OpenInterest
	TopLongShortAccountRatio
	TopLongShortPositionRatio
	GlobalLongShortAccountRatio
)

// Sub-source selectors for the top-trader long/short ratio endpoints.
const (
	SourceAccount  = "Account"
	SourcePosition = "Position"
)

// Kinds lists every metric kind in fan-out order.
var Kinds = []MetricKind{
	ServerTime,
	Candle,
	OrderBookSnapshot,
	OpenInterest,
	TopLongShortAccountRatio,
	TopLongShortPositionRatio,
	GlobalLongShortAccountRatio,
}

// SymbolKinds returns the per-symbol kinds in fan-out order.
func SymbolKinds() []MetricKind {
	return append([]MetricKind(nil), Kinds[1:]...)
}

var kindNames = map[MetricKind]string{
	ServerTime:                  "server_time",
	Candle:                      "candle",
	OrderBookSnapshot:           "order_book_snapshot",
	OpenInterest:                "open_interest",
	TopLongShortAccountRatio:    "top_long_short_account_ratio",
	TopLongShortPositionRatio:   "top_long_short_position_ratio",
	GlobalLongShortAccountRatio: "global_long_short_account_ratio",
}

var kindTables = map[MetricKind]string{
	ServerTime:                  "server_time",
	Candle:                      "clines",
	OrderBookSnapshot:           "order_book",
	OpenInterest:                "open_interests",
	TopLongShortAccountRatio:    "long_short_ratio_top_accounts",
	TopLongShortPositionRatio:   "long_short_ratio_top_positions",
	GlobalLongShortAccountRatio: "long_short_ratio_global_accounts",
}

func (k MetricKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MetricKind(%d)", int(k))
}

// Valid reports whether k is one of the known kinds.
func (k MetricKind) Valid() bool {
	_, ok := kindTables[k]
	return ok
}

// Table returns the destination table name for the kind.
func (k MetricKind) Table() string {
	return kindTables[k]
}

// PerSymbol reports whether rows of this kind are keyed by symbol.
func (k MetricKind) PerSymbol() bool {
	return k != ServerTime
}

// Source returns the sub-source selector used when fetching the kind,
// or "" when the endpoint takes none.
func (k MetricKind) Source() string {
	switch k {
	case TopLongShortAccountRatio:
		return SourceAccount
	case TopLongShortPositionRatio:
		return SourcePosition
	default:
		return ""
	}
}

// Key identifies the destination of a RowSet: a table and, for per-symbol
// kinds, a symbol. Server-time rows use an empty symbol.
type Key struct {
	Table  string
	Symbol string
}

func (k Key) String() string {
	if k.Symbol == "" {
		return k.Table
	}
	return k.Table + "/" + k.Symbol
}

// FetchTask is one pending fetch within a cycle.
type FetchTask struct {
	Kind   MetricKind
	Symbol string // empty for ServerTime
	Source string // "Account" or "Position" for top-trader ratios
}

// Key returns the (table, symbol) pair the task's result is written to.
func (t FetchTask) Key() Key {
	return Key{Table: t.Kind.Table(), Symbol: t.Symbol}
}

func (t FetchTask) String() string {
	return t.Key().String()
}

// RowSet is the shaped result of one fetch, ready to append to its table.
type RowSet struct {
	Kind    MetricKind
	Symbol  string
	Columns []string
	Rows    [][]any
}

// NewRowSet returns an empty RowSet carrying the kind's column schema.
func NewRowSet(kind MetricKind, symbol string) RowSet {
	return RowSet{
		Kind:    kind,
		Symbol:  symbol,
		Columns: ColumnNames(kind),
	}
}

// Key returns the (table, symbol) pair the RowSet belongs to.
func (r RowSet) Key() Key {
	return Key{Table: r.Kind.Table(), Symbol: r.Symbol}
}

// Len returns the number of rows.
func (r RowSet) Len() int {
	return len(r.Rows)
}

// Append adds one row. Values must follow Columns order.
func (r *RowSet) Append(values ...any) {
	r.Rows = append(r.Rows, values)
}

// Validate checks that every row matches the column count.
func (r RowSet) Validate() error {
	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return fmt.Errorf("%s: row %d has %d values, want %d", r.Key(), i, len(row), len(r.Columns))
		}
	}
	return nil
}

// Entry is one reassembled (key, RowSet) pair.
type Entry struct {
	Key    Key
	RowSet RowSet
}

// Mapping is the reassembled result of a cycle, ordered as the cycle's tasks.
type Mapping struct {
	entries []Entry
	index   map[Key]int
}

// NewMapping builds a Mapping from ordered entries. Keys must be unique.
func NewMapping(entries []Entry) (Mapping, error) {
	m := Mapping{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[Key]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := m.index[e.Key]; dup {
			return Mapping{}, fmt.Errorf("duplicate key %s", e.Key)
		}
		m.index[e.Key] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return m, nil
}

// Len returns the number of entries.
func (m Mapping) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the entries in cycle order.
func (m Mapping) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Lookup returns the RowSet stored under key.
func (m Mapping) Lookup(key Key) (RowSet, bool) {
	i, ok := m.index[key]
	if !ok {
		return RowSet{}, false
	}
	return m.entries[i].RowSet, true
}

// Rows returns the total number of rows across all entries.
func (m Mapping) Rows() int {
	n := 0
	for _, e := range m.entries {
		n += e.RowSet.Len()
	}
	return n
}
