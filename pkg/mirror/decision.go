package mirror

// Decision is the outcome of a mirror query.
type Decision uint8

const (
	// Pending means the session is still loading.
	Pending Decision = iota
	Allowed
	Denied
)

// Resolved reports whether d is Allowed or Denied.
func (d Decision) Resolved() bool {
	return d != Pending
}

// Granted reports whether d is Allowed.
func (d Decision) Granted() bool {
	return d == Allowed
}

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "pending"
	}
}

func decide(ok bool) Decision {
	if ok {
		return Allowed
	}
	return Denied
}

// CRUD holds the four basic actions on one resource.
type CRUD struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}
