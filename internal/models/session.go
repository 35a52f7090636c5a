package models

// SessionState classifies whether a user's stored credential is usable.
type SessionState string

const (
	StateNoSession          SessionState = "no_session"
	StateValid              SessionState = "valid"
	StateExpiredWithRefresh SessionState = "expired_with_refresh"
	StateExpiredNoRefresh   SessionState = "expired_no_refresh"
	StateRevoked            SessionState = "revoked"
)

// SessionRecord is the result of one session resolution. It is computed
// fresh per inbound message and never cached across requests.
type SessionRecord struct {
	State         SessionState
	Credential    *Credential
	SpreadsheetID string
	NeedsReauth   bool
}

// CanProcess reports whether the session permits message processing.
// Every other state redirects the user into the authorization flow.
func (r SessionRecord) CanProcess() bool {
	return r.State == StateValid || r.State == StateExpiredWithRefresh
}
