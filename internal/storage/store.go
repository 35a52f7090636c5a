package storage

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
	"github.com/vitalsheet/whatsapp-backend/internal/models"
)

// ProfileCell is the fixed, well-known cell holding the user's serialized
// profile. Credential and spreadsheet identity are stored there as one
// atomic JSON value.
const ProfileCell = "User Profiles!A1"

// Sheet ranges the readings are appended to.
const (
	BloodSugarRange    = "Blood Sugar!A:D"
	BloodPressureRange = "Blood Pressure!A:E"
)

// Store abstracts the per-user document backend: finding the user's
// spreadsheet, reading and writing the stored credential blob, and
// appending readings. Every operation requires an authorized handle;
// nothing can be looked up before the user has authorized at least once.
type Store interface {
	// FindSpreadsheet returns the id of the user's non-trashed document
	// carrying the deterministic bot_identifier tag, or "" when none exists.
	FindSpreadsheet(ctx context.Context, userID string, h *googleauth.Handle) (string, error)

	// ReadProfile reads the fixed profile cell. An empty cell, a missing
	// sheet or a bad range all mean "no stored session" and return
	// (nil, nil); unexpected backend errors are logged and folded into
	// absence as well.
	ReadProfile(ctx context.Context, userID, spreadsheetID string, h *googleauth.Handle) (*models.UserProfile, error)

	// WriteProfile overwrites the fixed cell with the serialized
	// (credential, spreadsheet) pair.
	WriteProfile(ctx context.Context, h *googleauth.Handle, userID, spreadsheetID string, tok *oauth2.Token) error

	// CreateSpreadsheet provisions a tagged document from the template
	// with restricted sharing. Called at most once per user.
	CreateSpreadsheet(ctx context.Context, userID string, h *googleauth.Handle) (string, error)

	// AppendReading appends one row to the sheet matching the reading's
	// kind. Failures propagate so the caller can report them to the user.
	AppendReading(ctx context.Context, r models.Reading, spreadsheetID string, h *googleauth.Handle) error

	// Probe makes a cheap authenticated call against the spreadsheet.
	// False on 401/403, and false on any other failure: ambiguity never
	// counts as live.
	Probe(ctx context.Context, spreadsheetID string, h *googleauth.Handle) bool
}
