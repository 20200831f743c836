package model

// ColumnType is the storage type of a column.
type ColumnType int

const (
	BigInt ColumnType = iota
	Text
)

// Column describes one column of a metric table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Column layouts are shared with downstream consumers of the store and must
// not be reordered or renamed.
var schemas = map[MetricKind][]Column{
	ServerTime: {
		{Name: "server_time", Type: BigInt},
	},
	Candle: {
		{Name: "t_c", Type: BigInt},
		{Name: "p_o", Type: Text},
		{Name: "p_h", Type: Text},
		{Name: "p_l", Type: Text},
		{Name: "p_c", Type: Text},
		{Name: "v_q_a", Type: Text},
		{Name: "n", Type: BigInt},
		{Name: "v_b", Type: Text},
		{Name: "v_q", Type: Text},
		{Name: "symbol", Type: Text},
	},
	OrderBookSnapshot: {
		{Name: "bids_price", Type: Text, Nullable: true},
		{Name: "bids_volume", Type: Text, Nullable: true},
		{Name: "asks_price", Type: Text, Nullable: true},
		{Name: "asks_volume", Type: Text, Nullable: true},
		{Name: "lastUpdateId", Type: BigInt},
		{Name: "symbol", Type: Text},
	},
	OpenInterest: {
		{Name: "symbol", Type: Text},
		{Name: "o_i", Type: Text},
		{Name: "t_o_i", Type: BigInt},
	},
	TopLongShortAccountRatio: {
		{Name: "symbol", Type: Text},
		{Name: "l_s_t_a", Type: Text},
		{Name: "t_l_s_t_a", Type: BigInt},
	},
	TopLongShortPositionRatio: {
		{Name: "symbol", Type: Text},
		{Name: "l_s_t_p", Type: Text},
		{Name: "t_l_s_t_p", Type: BigInt},
	},
	GlobalLongShortAccountRatio: {
		{Name: "symbol", Type: Text},
		{Name: "l_s_g_a", Type: Text},
		{Name: "t_l_s_g_a", Type: BigInt},
	},
}

// Schema returns the column layout of the kind's table.
func Schema(kind MetricKind) []Column {
	return append([]Column(nil), schemas[kind]...)
}

// ColumnNames returns the kind's column names in table order.
func ColumnNames(kind MetricKind) []string {
	cols := schemas[kind]
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
