package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// CredentialIDSize is the fixed token identifier length in bytes.
const CredentialIDSize = 4

// CredentialID identifies a physical access token.
type CredentialID [CredentialIDSize]byte

// String renders the identifier as upper-case hex, e.g. "43894F2E".
func (id CredentialID) String() string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// ParseCredentialID parses an 8-digit hex identifier. Spaces and colons are ignored.
func ParseCredentialID(s string) (CredentialID, error) {
	var id CredentialID
	clean := strings.NewReplacer(" ", "", ":", "").Replace(strings.TrimSpace(s))
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return id, fmt.Errorf("parse credential id %q: %w", s, err)
	}
	if len(raw) != CredentialIDSize {
		return id, fmt.Errorf("parse credential id %q: want %d bytes, got %d", s, CredentialIDSize, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// Profile is the data associated with an accepted token.
type Profile struct {
	CredentialID   CredentialID `json:"credential_id"`
	Name           string       `json:"name"`
	PreferredTempC float64      `json:"preferred_temp_c"`
}

// AccessResult is the outcome of a credential check.
type AccessResult string

const (
	AccessAccepted AccessResult = "ACCEPTED"
	AccessRejected AccessResult = "REJECTED"
)
