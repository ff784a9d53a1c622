package authapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eduadmin-client/models"
	"eduadmin-client/token"
	"eduadmin-client/utils/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// LocalProvider is an offline credential exchange for development and tests.
// Accounts are registered in-process with bcrypt-hashed passwords; successful
// logins mint HS256 tokens shaped exactly like the server's.
type LocalProvider struct {
	mu       sync.RWMutex
	accounts map[string]localAccount
	secret   []byte
	ttl      time.Duration
	issuer   string
	logger   logger.Logger
}

type localAccount struct {
	passwordHash []byte
	user         models.User
}

// NewLocalProvider creates an empty provider from configuration.
func NewLocalProvider(cfg *models.Config, log logger.Logger) *LocalProvider {
	return &LocalProvider{
		accounts: make(map[string]localAccount),
		secret:   []byte(cfg.LocalAuthSecret),
		ttl:      cfg.LocalAuthTTL,
		issuer:   cfg.AppName,
		logger:   log,
	}
}

// Register adds an account. The user record is returned verbatim on login.
func (p *LocalProvider) Register(username, password string, user models.User) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[username] = localAccount{passwordHash: hash, user: user}
	return nil
}

// Login verifies credentials and mints a fresh token.
func (p *LocalProvider) Login(_ context.Context, creds models.Credentials) (*models.LoginResult, error) {
	p.mu.RLock()
	account, found := p.accounts[creds.Username]
	p.mu.RUnlock()

	if !found {
		return &models.LoginResult{Success: false, Message: "Invalid username or password"}, nil
	}
	if err := bcrypt.CompareHashAndPassword(account.passwordHash, []byte(creds.Password)); err != nil {
		return &models.LoginResult{Success: false, Message: "Invalid username or password"}, nil
	}

	tokenString, err := p.mint(account.user)
	if err != nil {
		return nil, err
	}

	user := account.user
	return &models.LoginResult{
		Success: true,
		Token:   tokenString,
		User:    &user,
	}, nil
}

// Renew reissues a token for the holder of a still-valid one.
func (p *LocalProvider) Renew(_ context.Context, currentToken string) (string, error) {
	claims, err := token.Decode(currentToken)
	if err != nil {
		return "", fmt.Errorf("cannot renew malformed token: %w", err)
	}
	if claims.Expired() {
		return "", fmt.Errorf("cannot renew expired token")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, account := range p.accounts {
		if account.user.ID == claims.UserID {
			return p.mint(account.user)
		}
	}

	return "", fmt.Errorf("no account for user %s", claims.UserID)
}

// NotifyContext is a no-op; there is no server to keep in sync.
func (p *LocalProvider) NotifyContext(_ context.Context, _ string, _ models.ManagedContext) error {
	return nil
}

// mint signs an HS256 token carrying the app-level claims.
func (p *LocalProvider) mint(user models.User) (string, error) {
	now := time.Now()
	claims := models.TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	p.logger.Debugf("Minted local token for user %s", user.ID)
	return signed, nil
}
