package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSanitizeUserID(t *testing.T) {
	assert.Equal(t, "15551234567", SanitizeUserID("15551234567"))
	assert.Equal(t, "15551234567", SanitizeUserID(`"15551234567"`))
	assert.Equal(t, "15551234567", SanitizeUserID(`'1555\1234567'`))
}

func TestBotIdentifier(t *testing.T) {
	assert.Equal(t, "whatsapp_bot_15551234567", BotIdentifier(`"15551234567"`))
}

func TestUserProfileRoundTrip(t *testing.T) {
	profile := UserProfile{
		SpreadsheetID: "sheet-1",
		Credential: Credential{
			AccessToken:  "at",
			RefreshToken: "rt",
			Scope:        "sheets drive.file",
			TokenType:    "Bearer",
			ExpiryDate:   1767225600000,
		},
	}

	raw, err := json.Marshal(profile)
	require.NoError(t, err)

	var decoded UserProfile
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, profile, decoded)

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestUserProfileFieldNames(t *testing.T) {
	raw, err := json.Marshal(UserProfile{
		SpreadsheetID: "sheet-1",
		Credential:    Credential{AccessToken: "at"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"spreadsheetId":"sheet-1","access_token":"at"}`, string(raw))
}

func TestCredentialTokenConversion(t *testing.T) {
	expiry := time.UnixMilli(1767225600000)
	cred := Credential{
		AccessToken:  "at",
		RefreshToken: "rt",
		TokenType:    "Bearer",
		ExpiryDate:   expiry.UnixMilli(),
	}

	tok := cred.Token()
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.True(t, tok.Expiry.Equal(expiry))

	back := CredentialFromToken(tok)
	assert.Equal(t, cred.AccessToken, back.AccessToken)
	assert.Equal(t, cred.RefreshToken, back.RefreshToken)
	assert.Equal(t, cred.ExpiryDate, back.ExpiryDate)
}

func TestCredentialFromToken_ZeroExpiry(t *testing.T) {
	cred := CredentialFromToken(&oauth2.Token{AccessToken: "at"})
	assert.Zero(t, cred.ExpiryDate)
	assert.True(t, cred.Token().Expiry.IsZero())
}
