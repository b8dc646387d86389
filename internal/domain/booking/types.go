package booking

import "strings"

type Status string

const (
	StatusPending   Status = "pending"
	StatusBooked    Status = "booked"
	StatusOnRent    Status = "on_rent"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// statusAliases maps legacy spellings still sent by older clients.
var statusAliases = map[string]Status{
	"confirmed": StatusBooked,
	"canceled":  StatusCancelled,
	"onrent":    StatusOnRent,
	"on-rent":   StatusOnRent,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusBooked, StatusOnRent, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// HoldsReservation reports whether the booking's dates are unavailable to others.
func (s Status) HoldsReservation() bool {
	switch s {
	case StatusPending, StatusBooked, StatusOnRent:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := statusAliases[normalized]; ok {
		return alias, nil
	}
	s := Status(normalized)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// HoldingStatuses lists the statuses that block a car's calendar.
func HoldingStatuses() []Status {
	return []Status{StatusPending, StatusBooked, StatusOnRent}
}

// Actor is the party triggering a transition.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorOwner    Actor = "owner"
	ActorSystem   Actor = "system"
)

func (a Actor) String() string {
	return string(a)
}
