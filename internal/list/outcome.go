package list

// Outcome distinguishes a produced value from a defined absence.
type Outcome int

const (
	// Handled means the operation produced its value or applied its write.
	Handled Outcome = iota

	// Absent means there is nothing there: a read past the end, or pop or
	// shift on an empty list. The returned value is ir.IRNull.
	Absent

	// NotHandled means the key or method does not belong to the list and
	// should be resolved by the caller's own property handling.
	NotHandled
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case Absent:
		return "absent"
	case NotHandled:
		return "not_handled"
	default:
		return "unknown"
	}
}
