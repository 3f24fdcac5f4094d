package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/workspace-live/domain/identity"
)

// Port defines the interface for authentication operations. This is
// the port other modules use to access auth functionality.
type Port interface {
	Authenticate(ctx context.Context, token string) (*identity.User, error)
}

// Adapter implements Port using the service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{
		container: container,
	}
}

// Authenticate resolves a bearer token to a user identity. Any
// authentication failure returns ErrUnauthenticated.
func (a *Adapter) Authenticate(ctx context.Context, token string) (*identity.User, error) {
	req := AuthenticateRequest{Token: token}
	var resp AuthenticateResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"authenticate",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("authenticate request failed: %w", err)
	}

	if !resp.Valid {
		return nil, ErrUnauthenticated
	}

	return &identity.User{
		ID:        resp.UserID,
		Email:     resp.Email,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
		AvatarURL: resp.AvatarURL,
	}, nil
}
