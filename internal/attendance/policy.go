package attendance

// Policy holds the convenience rules that are not hard invariants.
type Policy struct {
	// AllowTravelWhileIdle lets a worker open a travel order with no open
	// work session.
	AllowTravelWhileIdle bool

	// AutoStartWorkAfterTravel opens a work session when travel ends and
	// none is open.
	AutoStartWorkAfterTravel bool
}

// DefaultPolicy enables travel-then-work.
func DefaultPolicy() Policy {
	return Policy{AllowTravelWhileIdle: true, AutoStartWorkAfterTravel: true}
}
