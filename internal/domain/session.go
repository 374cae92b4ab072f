package domain

// Session is the caller identity. It is either Anonymous or Authenticated.
type Session interface {
	isSession()
}

// Anonymous is a signed-out session. Nothing is persisted for it.
type Anonymous struct{}

// Authenticated is a signed-in user.
type Authenticated struct {
	UserID string
	Email  string
}

func (Anonymous) isSession()     {}
func (Authenticated) isSession() {}

// UserID returns the user id of an authenticated session.
func UserID(s Session) (string, bool) {
	a, ok := s.(Authenticated)
	if !ok || a.UserID == "" {
		return "", false
	}
	return a.UserID, true
}
