package auth

import (
	"crypto/subtle"

	"github.com/Mod5ied/eagle-server/internal/models"
)

// DemoUserID is the id of the single configured identity.
const DemoUserID = "demo-user-1"

// CredentialValidator accepts exactly one configured email/password pair.
type CredentialValidator struct {
	email    string
	password string
}

func NewCredentialValidator(email, password string) *CredentialValidator {
	return &CredentialValidator{email: email, password: password}
}

// Validate returns the demo user when both values match.
func (v *CredentialValidator) Validate(email, password string) (*models.User, bool) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(v.email))
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.password))
	if emailOK&passwordOK != 1 || v.email == "" {
		return nil, false
	}
	return &models.User{ID: DemoUserID, Email: email}, true
}
