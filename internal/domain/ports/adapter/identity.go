package adapter

import (
	"context"

	"stratoguide/internal/domain/model"
)

// IdentityProvider is the sign-in backend used around the chat.
// Subscribe registers an observer of the current user (nil after sign-out)
// and returns a function that removes it.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	SignUp(ctx context.Context, email, password string) (*model.User, error)
	SignOut(ctx context.Context) error
	Current() *model.User
	Subscribe(fn func(*model.User)) (unsubscribe func())
}
