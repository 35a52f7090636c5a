package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/vitalsheet/whatsapp-backend/internal/googleauth"
	"github.com/vitalsheet/whatsapp-backend/internal/models"
)

// GoogleStore talks to the user's own Google Drive and Sheets. Services
// are built per call from the handle's authorized client, the same way
// each request in the upstream APIs carries its own auth.
type GoogleStore struct {
	logger *zap.Logger
}

func NewGoogleStore(logger *zap.Logger) *GoogleStore {
	return &GoogleStore{logger: logger}
}

func (s *GoogleStore) sheetsService(ctx context.Context, h *googleauth.Handle) (*sheets.Service, error) {
	return sheets.NewService(ctx, option.WithHTTPClient(h.HTTPClient(ctx)))
}

func (s *GoogleStore) driveService(ctx context.Context, h *googleauth.Handle) (*drive.Service, error) {
	return drive.NewService(ctx, option.WithHTTPClient(h.HTTPClient(ctx)))
}

func (s *GoogleStore) FindSpreadsheet(ctx context.Context, userID string, h *googleauth.Handle) (string, error) {
	svc, err := s.driveService(ctx, h)
	if err != nil {
		return "", fmt.Errorf("drive client: %w", err)
	}

	query := fmt.Sprintf(
		"appProperties has { key='bot_identifier' and value='%s' } and trashed = false",
		models.BotIdentifier(userID))
	list, err := svc.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("spreadsheet lookup failed: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (s *GoogleStore) ReadProfile(ctx context.Context, userID, spreadsheetID string, h *googleauth.Handle) (*models.UserProfile, error) {
	svc, err := s.sheetsService(ctx, h)
	if err != nil {
		s.logger.Error("sheets client", zap.Error(err), zap.String("user_id", userID))
		return nil, nil
	}

	res, err := svc.Spreadsheets.Values.Get(spreadsheetID, ProfileCell).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == http.StatusBadRequest || gerr.Code == http.StatusNotFound) {
			s.logger.Info("profile sheet or range not found",
				zap.String("user_id", userID), zap.Int("code", gerr.Code))
			return nil, nil
		}
		// Treated as absence, not error: a failed read means "no session".
		s.logger.Error("reading stored profile failed", zap.Error(err), zap.String("user_id", userID))
		return nil, nil
	}

	if len(res.Values) == 0 || len(res.Values[0]) == 0 {
		return nil, nil
	}
	raw, ok := res.Values[0][0].(string)
	if !ok || raw == "" {
		return nil, nil
	}

	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Error("stored profile is not valid JSON", zap.Error(err), zap.String("user_id", userID))
		return nil, nil
	}
	return &profile, nil
}

func (s *GoogleStore) WriteProfile(ctx context.Context, h *googleauth.Handle, userID, spreadsheetID string, tok *oauth2.Token) error {
	svc, err := s.sheetsService(ctx, h)
	if err != nil {
		return fmt.Errorf("sheets client: %w", err)
	}

	profile := models.UserProfile{
		SpreadsheetID: spreadsheetID,
		Credential:    models.CredentialFromToken(tok),
	}
	blob, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("serializing profile: %w", err)
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{{string(blob)}}}
	_, err = svc.Spreadsheets.Values.Update(spreadsheetID, ProfileCell, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing profile for %s: %w", userID, err)
	}
	return nil
}

func (s *GoogleStore) CreateSpreadsheet(ctx context.Context, userID string, h *googleauth.Handle) (string, error) {
	svc, err := s.sheetsService(ctx, h)
	if err != nil {
		return "", fmt.Errorf("sheets client: %w", err)
	}

	created, err := svc.Spreadsheets.Create(newSpreadsheetTemplate()).
		Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		s.logger.Error("spreadsheet creation failed", zap.Error(err), zap.String("user_id", userID))
		return "", fmt.Errorf("creating spreadsheet: %w", err)
	}
	spreadsheetID := created.SpreadsheetId
	s.logger.Info("spreadsheet created",
		zap.String("user_id", userID), zap.String("spreadsheet_id", spreadsheetID))

	drv, err := s.driveService(ctx, h)
	if err != nil {
		return "", fmt.Errorf("drive client: %w", err)
	}

	// Tag the document so it can be found again, and lock down sharing.
	meta := &drive.File{
		AppProperties:                map[string]string{"bot_identifier": models.BotIdentifier(userID)},
		CopyRequiresWriterPermission: true,
		WritersCanShare:              false,
		ForceSendFields:              []string{"WritersCanShare"},
	}
	if _, err := drv.Files.Update(spreadsheetID, meta).Context(ctx).Do(); err != nil {
		s.logger.Error("tagging spreadsheet failed", zap.Error(err), zap.String("user_id", userID))
		return "", fmt.Errorf("tagging spreadsheet: %w", err)
	}

	return spreadsheetID, nil
}

func (s *GoogleStore) AppendReading(ctx context.Context, r models.Reading, spreadsheetID string, h *googleauth.Handle) error {
	svc, err := s.sheetsService(ctx, h)
	if err != nil {
		return fmt.Errorf("sheets client: %w", err)
	}

	sheetRange := BloodSugarRange
	if r.Kind == models.ReadingBloodPressure {
		sheetRange = BloodPressureRange
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{r.Row()}}
	_, err = svc.Spreadsheets.Values.Append(spreadsheetID, sheetRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %s reading: %w", r.Kind, err)
	}
	return nil
}

func (s *GoogleStore) Probe(ctx context.Context, spreadsheetID string, h *googleauth.Handle) bool {
	svc, err := s.sheetsService(ctx, h)
	if err != nil {
		s.logger.Error("sheets client", zap.Error(err))
		return false
	}

	_, err = svc.Spreadsheets.Get(spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err == nil {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		s.logger.Warn("liveness probe rejected", zap.Int("code", gerr.Code))
		return false
	}
	s.logger.Error("liveness probe failed", zap.Error(err))
	return false
}
