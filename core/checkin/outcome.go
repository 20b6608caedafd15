package checkin

type OutcomeKind int

const (
	Accepted OutcomeKind = iota + 1
	Rejected
	TransportError
)

// Reason qualifies a Rejected outcome.
type Reason int

const (
	Forbidden Reason = iota + 1 // not the caller's scheduled session
	AlreadyRecorded
	Expired
)

func (r Reason) String() string {
	switch r {
	case Forbidden:
		return "forbidden"
	case AlreadyRecorded:
		return "already_recorded"
	case Expired:
		return "expired"
	default:
		return ""
	}
}

// Outcome is the result of one submission.
// Reason is set for Rejected outcomes, Message for TransportError ones.
type Outcome struct {
	Kind    OutcomeKind
	Reason  Reason
	Message string
}

func Accept() Outcome                     { return Outcome{Kind: Accepted} }
func Reject(reason Reason) Outcome        { return Outcome{Kind: Rejected, Reason: reason} }
func TransportFailure(msg string) Outcome { return Outcome{Kind: TransportError, Message: msg} }

func (o Outcome) IsAccepted() bool { return o.Kind == Accepted }

func (o Outcome) String() string {
	switch o.Kind {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected:" + o.Reason.String()
	case TransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Notice is the text shown to the person who scanned.
func (o Outcome) Notice() string {
	switch o.Kind {
	case Accepted:
		return "Attendance recorded."
	case Rejected:
		switch o.Reason {
		case Forbidden:
			return "This is not your scheduled session."
		case AlreadyRecorded:
			return "You have already checked in."
		case Expired:
			return "This code has expired."
		}
		return "Check-in rejected."
	case TransportError:
		return "Network error: " + o.Message
	default:
		return ""
	}
}
