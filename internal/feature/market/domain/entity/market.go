// Package entity defines market overview values: index levels and the USD/KRW rate.
package entity

// IndexCode is the provider's sector index code.
type IndexCode string

const (
	KOSPI  IndexCode = "0001"
	KOSDAQ IndexCode = "1001"
)

// Indices are the index codes shown on the dashboard, keyed by display name.
var Indices = map[string]IndexCode{
	"kospi":  KOSPI,
	"kosdaq": KOSDAQ,
}

// Sign codes of the change versus the previous close.
const (
	SignUpperLimit = "1"
	SignRise       = "2"
	SignFlat       = "3"
	SignLowerLimit = "4"
	SignFall       = "5"
)

// IndexInfo is an index snapshot. Values are kept as the provider formats them.
type IndexInfo struct {
	Price  string // e.g. "2500.12"
	Sign   string // one of the Sign codes
	Change string // change versus the previous close
	Rate   string // change rate in percent
}

// UnavailableIndex is shown when an index cannot be fetched.
func UnavailableIndex() IndexInfo {
	return IndexInfo{Price: "-", Sign: SignFlat, Change: "0.00", Rate: "0.00"}
}
