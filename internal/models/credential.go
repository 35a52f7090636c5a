package models

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// SanitizeUserID strips quoting artifacts that upstream encoding wraps
// around the WhatsApp ID. It must run before the ID is used as a lookup
// key or embedded in any cross-service identifier.
func SanitizeUserID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', '"', '\\':
			return -1
		}
		return r
	}, id)
}

// BotIdentifier returns the deterministic Drive metadata tag that links a
// user to their spreadsheet.
func BotIdentifier(userID string) string {
	return "whatsapp_bot_" + SanitizeUserID(userID)
}

// Credential is the OAuth token bundle as persisted in the user's sheet.
// ExpiryDate is Unix milliseconds, zero when the provider sent none.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiryDate   int64  `json:"expiry_date,omitempty"`
}

// UserProfile is the single JSON value stored in the fixed profile cell:
// the credential and the spreadsheet identity travel together so a read
// always yields either nothing or a consistent pair.
type UserProfile struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Credential
}

// CredentialFromToken converts an oauth2 token for persistence.
func CredentialFromToken(tok *oauth2.Token) Credential {
	c := Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		c.ExpiryDate = tok.Expiry.UnixMilli()
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		c.Scope = scope
	}
	return c
}

// Token converts the stored credential back into an oauth2 token.
func (c Credential) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
	}
	if c.ExpiryDate != 0 {
		tok.Expiry = time.UnixMilli(c.ExpiryDate)
	}
	return tok
}
