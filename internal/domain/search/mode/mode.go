package mode

// Mode is the query compilation path.
type Mode string

// Search mode constants.
const (
	// FreeText is the weighted multi-field path for a single search string.
	FreeText Mode = "free_text"
	// Boolean is the 3-operand expression path (op1, operator, op2).
	Boolean Mode = "boolean"
	Vector  Mode = "vector"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == FreeText || m == Boolean || m == Vector
}
