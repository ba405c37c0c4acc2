// Package identity models who a participant is. A participant is either a
// guest (display name only) or a registered user with a database id. The
// two cases are separate types so persistence code can type-switch instead
// of checking an isGuest flag next to a maybe-zero id.
package identity

// Identity is implemented only by Guest and Registered.
type Identity interface {
	DisplayName() string
	sealed()
}

type Guest struct {
	Name string
}

func (g Guest) DisplayName() string { return g.Name }
func (Guest) sealed()               {}

type Registered struct {
	ID   int64
	Name string
}

func (r Registered) DisplayName() string { return r.Name }
func (Registered) sealed()               {}

// UserID returns the database id for registered identities, or 0 for guests.
func UserID(id Identity) int64 {
	if r, ok := id.(Registered); ok {
		return r.ID
	}
	return 0
}
