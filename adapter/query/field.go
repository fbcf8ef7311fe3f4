package query

import "strings"

// RangeOp is a range operator inferred from a criteria field-name suffix.
type RangeOp string

const (
	// RangeNone means the field carries no range suffix.
	RangeNone RangeOp = ""
	// RangeGT is the ">" suffix.
	RangeGT RangeOp = ">"
	// RangeGTE is the ">=" suffix.
	RangeGTE RangeOp = ">="
	// RangeLT is the "<" suffix.
	RangeLT RangeOp = "<"
	// RangeLTE is the "<=" suffix.
	RangeLTE RangeOp = "<="
)

// ParseField splits a criteria field name into its base path and range
// operator. The two-character suffixes are checked first so "a>=" does not
// parse as base "a>".
func ParseField(field string) (string, RangeOp) {
	for _, op := range []RangeOp{RangeGTE, RangeLTE, RangeGT, RangeLT} {
		if base, found := strings.CutSuffix(field, string(op)); found {
			return base, op
		}
	}
	return field, RangeNone
}
