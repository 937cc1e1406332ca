package domain

// Session is owned by the authentication collaborator; this package only
// carries the observed value. AnonymousID is stable across login and logout
// so the dormant guest cart can be found again.
type Session struct {
	Authenticated bool
	UserID        string
	AnonymousID   string
	Token         string
}
