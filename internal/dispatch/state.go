package dispatch

// State is a step of one dispatch.
type State int

const (
	Idle State = iota
	Validating
	Reading
	Simulating
	Writing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Reading:
		return "reading"
	case Simulating:
		return "simulating"
	case Writing:
		return "writing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Done reports whether s is terminal.
func (s State) Done() bool { return s == Completed || s == Failed }
