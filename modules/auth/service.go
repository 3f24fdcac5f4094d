package auth

import (
	"context"
	"errors"

	"github.com/example/workspace-live/domain/identity"
)

// ErrUnauthenticated is the single outcome for every failed
// authentication: missing, malformed, tampered or expired tokens, and
// tokens whose subject no longer resolves to an active user. The
// caller rejects the connection; no distinction is surfaced.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves a bearer token from the connection handshake
// to a user identity.
type Authenticator struct {
	jwt  *JWTManager
	repo *UserRepository
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(jwt *JWTManager, repo *UserRepository) *Authenticator {
	return &Authenticator{
		jwt:  jwt,
		repo: repo,
	}
}

// Authenticate validates the token and looks up the user it names.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*identity.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := a.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}
