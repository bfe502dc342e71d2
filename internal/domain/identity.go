package domain

// Actor is a verified caller: an opaque, stable identity string issued by
// the auth provider, plus the administrator flag from its claims.
type Actor struct {
	ID    string
	Admin bool
}
