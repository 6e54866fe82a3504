package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/kadapaimran/grocery-storefront/pkg/auth"
	"github.com/kadapaimran/grocery-storefront/pkg/config"
	pkgerrors "github.com/kadapaimran/grocery-storefront/pkg/errors"
	"github.com/kadapaimran/grocery-storefront/pkg/gateway"
	"github.com/kadapaimran/grocery-storefront/pkg/logger"
	"github.com/kadapaimran/grocery-storefront/pkg/security"
)

type authGateway interface {
	Login(ctx context.Context, creds gateway.Credentials) (*gateway.AuthResult, error)
	Signup(ctx context.Context, creds gateway.Credentials) (*gateway.AuthResult, error)
}

type sessionContainer interface {
	SetAuthenticated(ctx context.Context, username string)
	Clear(ctx context.Context)
}

// Result is a successful login or signup: a locally minted token plus the
// role it carries.
type Result struct {
	Token    string       `json:"token"`
	Username string       `json:"username"`
	Role     pkgauth.Role `json:"role"`
}

// Service authenticates shoppers against the remote gateway and admins
// against locally held credentials.
type Service interface {
	Login(ctx context.Context, username, password string) (*Result, error)
	Signup(ctx context.Context, username, password string) (*Result, error)
	Logout(ctx context.Context)
}

type service struct {
	gateway  authGateway
	sessions sessionContainer
	jwt      config.JWTConfig
	admin    config.AdminConfig
	logger   *logger.Logger

	now func() time.Time
}

// NewService builds the auth service.
func NewService(gw authGateway, sessions sessionContainer, jwtCfg config.JWTConfig, adminCfg config.AdminConfig, logg *logger.Logger) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("auth gateway required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session container required")
	}
	return &service{
		gateway:  gw,
		sessions: sessions,
		jwt:      jwtCfg,
		admin:    adminCfg,
		logger:   logg,
		now:      time.Now,
	}, nil
}

// Login checks the local admin credentials first; anything else goes to the
// remote gateway as a shopper login.
func (s *service) Login(ctx context.Context, username, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	if s.isAdmin(ctx, username, password) {
		return s.establish(ctx, username, pkgauth.RoleAdmin)
	}

	if _, err := s.gateway.Login(ctx, gateway.Credentials{Username: username, Password: password}); err != nil {
		return nil, err
	}
	return s.establish(ctx, username, pkgauth.RoleShopper)
}

// Signup registers the account with the remote gateway and signs the new
// shopper in.
func (s *service) Signup(ctx context.Context, username, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	if _, err := s.gateway.Signup(ctx, gateway.Credentials{Username: username, Password: password}); err != nil {
		return nil, err
	}
	return s.establish(ctx, username, pkgauth.RoleShopper)
}

// Logout clears the session container. There is nothing remote to revoke.
func (s *service) Logout(ctx context.Context) {
	s.sessions.Clear(ctx)
	if s.logger != nil {
		s.logger.Info(ctx, "session cleared")
	}
}

func (s *service) isAdmin(ctx context.Context, username, password string) bool {
	if s.admin.PasswordHash == "" || username != s.admin.Username {
		return false
	}
	ok, err := security.VerifyPassword(password, s.admin.PasswordHash)
	if err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "verifying admin credentials", err)
		}
		return false
	}
	return ok
}

func (s *service) establish(ctx context.Context, username string, role pkgauth.Role) (*Result, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		Username: username,
		Role:     role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	s.sessions.SetAuthenticated(ctx, username)
	if s.logger != nil {
		lctx := s.logger.WithUsername(s.logger.WithRole(ctx, string(role)), username)
		s.logger.Info(lctx, "session established")
	}

	return &Result{Token: token, Username: username, Role: role}, nil
}
