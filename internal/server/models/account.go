package models

import "time"

// Account is a registered user's persisted record.
//
// A deactivated account keeps its row with Active=false; it is invisible to
// normal lookups and listings, and its username/email become reusable by new
// registrations. No operation deletes the row physically.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	Active       bool
}
