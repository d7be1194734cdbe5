package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/DikaaDK/Chronos-sub000/internal/auth"
	"github.com/DikaaDK/Chronos-sub000/internal/client/api"
)

// Identity is the signed-in user as far as the client needs to know it.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Token  string
}

// LoginAPI is the sign in endpoint of the persistence API.
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
}

// AuthService signs users in against the persistence API.
type AuthService interface {
	Login(ctx context.Context, email, password string) (Identity, error)
}

type authService struct {
	api LoginAPI
}

func NewAuthService(a LoginAPI) AuthService {
	return &authService{api: a}
}

// Login returns the identity for the credentials. The user id comes from the
// login response and, failing that, from the token's claims.
func (a *authService) Login(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(email)

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		return Identity{}, fmt.Errorf("login: %w", err)
	}

	id := Identity{UserID: res.UserID, Name: res.Name, Email: email, Token: res.Token}
	if id.UserID == "" {
		uid, err := auth.UnverifiedUserID(res.Token)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrNoUserID, err)
		}
		id.UserID = uid
	}
	return id, nil
}
