package booking

import "slices"

// Effect is what a transition does to the car's availability.
type Effect int

const (
	EffectNone Effect = iota
	EffectReserve
	EffectRelease
)

func (e Effect) String() string {
	switch e {
	case EffectReserve:
		return "reserve"
	case EffectRelease:
		return "release"
	default:
		return "none"
	}
}

type Transition struct {
	From          Status
	To            Status
	Actors        []Actor
	Effect        Effect
	RequireReason bool
}

// Permits reports whether actor may trigger the transition.
func (t Transition) Permits(actor Actor) bool {
	return slices.Contains(t.Actors, actor)
}

// Creation is the implicit (none) -> pending transition.
var Creation = Transition{
	To:     StatusPending,
	Actors: []Actor{ActorCustomer},
	Effect: EffectReserve,
}

var transitions = []Transition{
	{From: StatusPending, To: StatusBooked, Actors: []Actor{ActorOwner}, Effect: EffectNone},
	{From: StatusPending, To: StatusCancelled, Actors: []Actor{ActorOwner, ActorCustomer, ActorSystem}, Effect: EffectRelease, RequireReason: true},
	{From: StatusBooked, To: StatusOnRent, Actors: []Actor{ActorOwner, ActorSystem}, Effect: EffectNone},
	{From: StatusBooked, To: StatusCancelled, Actors: []Actor{ActorOwner, ActorCustomer}, Effect: EffectRelease, RequireReason: true},
	{From: StatusOnRent, To: StatusCompleted, Actors: []Actor{ActorOwner, ActorSystem}, Effect: EffectNone},
	// Early termination frees the remaining dates immediately.
	{From: StatusOnRent, To: StatusCancelled, Actors: []Actor{ActorOwner}, Effect: EffectRelease, RequireReason: true},
}

// LookupTransition returns the table entry for from -> to, or a
// *TransitionError when the move is not allowed.
func LookupTransition(from, to Status) (Transition, error) {
	if from.IsTerminal() {
		return Transition{}, &TransitionError{From: from, To: to, Err: ErrTerminalState}
	}
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, nil
		}
	}
	return Transition{}, &TransitionError{From: from, To: to, Err: ErrIllegalTransition}
}

// AllowedFrom lists the transitions leaving from, in table order.
func AllowedFrom(from Status) []Transition {
	var out []Transition
	for _, t := range transitions {
		if t.From == from {
			out = append(out, t)
		}
	}
	return out
}

// PermittedActors returns who may move a booking from -> to.
func PermittedActors(from, to Status) ([]Actor, error) {
	t, err := LookupTransition(from, to)
	if err != nil {
		return nil, err
	}
	return slices.Clone(t.Actors), nil
}
