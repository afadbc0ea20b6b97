package model

// User represents an account record as stored in the data file.  Users are
// created by the seed generator and only mutated by profile updates; they
// are never deleted while the service runs.
//
// Fields:
//   - ID: stable numeric identifier.
//   - Username: unique login name.
//   - Password: plaintext password, matched exactly on /auth.
//   - Email: contact address, replaced on profile update.
//   - ProfilePhoto: stored name of the latest uploaded photo (empty until the first upload).
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email,omitempty"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}
