package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator creates accounts and verifies sign-ins. Emails are compared
// case-insensitively.
type Authenticator interface {
	// Register creates an account. It fails with ErrEmailExists or
	// ErrWeakPassword.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account for email, or ErrInvalidCredentials
	// whether the email is unknown or the credential is wrong.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	ValidateCredential(credential string) error
}
