package storage

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
	"github.com/vitalsheet/whatsapp-backend/internal/models"
)

// MemoryStore keeps everything in process memory. Used for tests and for
// local development without Google credentials (USE_MEMORY_STORE=true).
type MemoryStore struct {
	mu           sync.RWMutex
	spreadsheets map[string]string              // userID -> spreadsheetID
	profiles     map[string]*models.UserProfile // spreadsheetID -> profile
	readings     map[string][]models.Reading    // spreadsheetID -> appended rows
	nextID       int

	// Live controls what Probe reports, so tests can simulate revocation.
	Live bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		spreadsheets: make(map[string]string),
		profiles:     make(map[string]*models.UserProfile),
		readings:     make(map[string][]models.Reading),
		Live:         true,
	}
}

func (s *MemoryStore) FindSpreadsheet(_ context.Context, userID string, _ *googleauth.Handle) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spreadsheets[models.SanitizeUserID(userID)], nil
}

func (s *MemoryStore) ReadProfile(_ context.Context, _, spreadsheetID string, _ *googleauth.Handle) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[spreadsheetID]
	if !ok {
		return nil, nil
	}
	cp := *profile
	return &cp, nil
}

func (s *MemoryStore) WriteProfile(_ context.Context, _ *googleauth.Handle, userID, spreadsheetID string, tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[spreadsheetID] = &models.UserProfile{
		SpreadsheetID: spreadsheetID,
		Credential:    models.CredentialFromToken(tok),
	}
	s.spreadsheets[models.SanitizeUserID(userID)] = spreadsheetID
	return nil
}

func (s *MemoryStore) CreateSpreadsheet(_ context.Context, userID string, _ *googleauth.Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := fmt.Sprintf("mem-sheet-%d", s.nextID)
	s.spreadsheets[models.SanitizeUserID(userID)] = id
	return id, nil
}

func (s *MemoryStore) AppendReading(_ context.Context, r models.Reading, spreadsheetID string, _ *googleauth.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.spreadsheets[findOwner(s.spreadsheets, spreadsheetID)]; !ok {
		return fmt.Errorf("spreadsheet %s not found", spreadsheetID)
	}
	s.readings[spreadsheetID] = append(s.readings[spreadsheetID], r)
	return nil
}

func (s *MemoryStore) Probe(_ context.Context, _ string, _ *googleauth.Handle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Live
}

// Readings returns the rows appended to a spreadsheet, for assertions.
func (s *MemoryStore) Readings(spreadsheetID string) []models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Reading(nil), s.readings[spreadsheetID]...)
}

func findOwner(spreadsheets map[string]string, spreadsheetID string) string {
	for userID, id := range spreadsheets {
		if id == spreadsheetID {
			return userID
		}
	}
	return ""
}
