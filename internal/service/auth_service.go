package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lshigami/quizx/config"
	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

var (
	ErrEmailInUse          = errors.New("email already in use")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrWeakPassword        = errors.New("weak password")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserDisabled        = errors.New("user disabled")
	ErrOperationNotAllowed = errors.New("operation not allowed")
	ErrFederatedCancelled  = errors.New("federated sign-in cancelled")
)

const (
	minPasswordLength = 6
	providerPassword  = "password"
	providerGoogle    = "google"
)

// AuthErrorMessage maps an identity provider failure to the text shown next to
// the sign-in form.
func AuthErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return "Email already registered."
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email address."
	case errors.Is(err, ErrOperationNotAllowed):
		return "Operation not allowed."
	case errors.Is(err, ErrWeakPassword):
		return "Password too weak."
	case errors.Is(err, ErrUserDisabled):
		return "Account has been disabled."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials."
	case errors.Is(err, ErrFederatedCancelled):
		return "Sign-in cancelled."
	}
	return "Authentication failed. Please try again."
}

// IdentityProvider authenticates users. Returned users carry identity fields
// only; entitlements are filled in by NormalizeIdentity.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, name string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	// SignInFederated verifies a Google ID token obtained by the browser.
	SignInFederated(ctx context.Context, credential string) (*model.User, error)
	SignOut(ctx context.Context, userID string) error
}

type tokenVerifier func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type authService struct {
	accounts       repository.AccountRepository
	validate       *validator.Validate
	googleClientID string
	verify         tokenVerifier
}

func NewAuthService(accounts repository.AccountRepository, cfg *config.Config) IdentityProvider {
	if cfg.Auth.GoogleClientID == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID is not set. Federated sign-in is disabled.")
	}
	return newAuthService(accounts, cfg.Auth.GoogleClientID, idtoken.Validate)
}

func newAuthService(accounts repository.AccountRepository, googleClientID string, verify tokenVerifier) *authService {
	return &authService{
		accounts:       accounts,
		validate:       validator.New(),
		googleClientID: googleClientID,
		verify:         verify,
	}
}

func (s *authService) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *authService) SignUp(ctx context.Context, email, password, name string) (*model.User, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if _, err := s.accounts.FindByEmail(email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account := &model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Provider:     providerPassword,
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	log.Info().Str("accountID", account.ID).Msg("Account created")
	return accountUser(account), nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByEmail(email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account.Disabled {
		return nil, ErrUserDisabled
	}
	if account.PasswordHash == "" {
		// federated-only account
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return accountUser(account), nil
}

func (s *authService) SignInFederated(ctx context.Context, credential string) (*model.User, error) {
	if s.googleClientID == "" {
		return nil, ErrOperationNotAllowed
	}
	if strings.TrimSpace(credential) == "" {
		return nil, ErrFederatedCancelled
	}
	payload, err := s.verify(ctx, credential, s.googleClientID)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected Google ID token")
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	subject := payload.Subject

	account, err := s.accounts.FindBySubject(providerGoogle, subject)
	if err == nil {
		if account.Disabled {
			return nil, ErrUserDisabled
		}
		return accountUser(account), nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if email != "" {
		existing, err := s.accounts.FindByEmail(strings.ToLower(email))
		if err == nil {
			if existing.Disabled {
				return nil, ErrUserDisabled
			}
			existing.Subject = &subject
			if err := s.accounts.Update(existing); err != nil {
				return nil, fmt.Errorf("failed to link google identity: %w", err)
			}
			return accountUser(existing), nil
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("failed to look up account: %w", err)
		}
	}

	account = &model.Account{
		ID:       uuid.NewString(),
		Email:    strings.ToLower(email),
		Name:     name,
		Provider: providerGoogle,
		Subject:  &subject,
	}
	if account.Email == "" {
		account.Email = subject + "@accounts.google.com"
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	log.Info().Str("accountID", account.ID).Str("provider", providerGoogle).Msg("Account created")
	return accountUser(account), nil
}

// SignOut has nothing to revoke: sessions are held by the caller.
func (s *authService) SignOut(ctx context.Context, userID string) error {
	log.Debug().Str("userID", userID).Msg("Signed out")
	return nil
}

func accountUser(a *model.Account) *model.User {
	return &model.User{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}
