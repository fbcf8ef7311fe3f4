package query

// ReservedValue is a sentinel criterion value expressing a structural
// predicate instead of literal equality. It is only meaningful when a
// criterion carries exactly one value.
type ReservedValue string

const (
	// Exists matches documents where the field is present, whatever its
	// value.
	Exists ReservedValue = "$exists"
	// Null matches documents where the field is set to an explicit null,
	// which is distinct from the field being absent.
	Null ReservedValue = "$null"
	// Any emits no predicate. It forces a field into the criteria set,
	// typically so it can be grouped on, without constraining it.
	Any ReservedValue = "$any"
)

// ParseReserved reports whether a criterion value is one of the reserved
// sentinels. Both the [ReservedValue] constants and their string forms are
// recognized.
func ParseReserved(value any) (ReservedValue, bool) {
	switch v := value.(type) {
	case ReservedValue:
		return v, true
	case string:
		switch rv := ReservedValue(v); rv {
		case Exists, Null, Any:
			return rv, true
		}
	}
	return "", false
}
