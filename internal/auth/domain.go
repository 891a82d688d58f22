package auth

import "time"

// Identity is the signed-in account as reported by the upstream Auth API.
type Identity struct {
	AccessToken string
	Email       string
	Name        string
}

// Draft is a pending login: credentials already verified upstream, token
// issued, but not yet committed to the console session. The draft only
// becomes a session after the secondary verification step succeeds.
type Draft struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CodeHash    string    `json:"code_hash"`
	CreatedAt   time.Time `json:"created_at"`
}
