package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAccounts(t *testing.T) repository.AccountRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Account{}))
	return repository.NewAccountRepository(db)
}

func googleVerifier(subject, email, name string) tokenVerifier {
	return func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "good-token" || audience != "client-id" {
			return nil, errors.New("bad token")
		}
		return &idtoken.Payload{Subject: subject, Claims: map[string]interface{}{"email": email, "name": name}}, nil
	}
}

func TestAuthSignUpAndSignIn(t *testing.T) {
	accounts := newTestAccounts(t)
	svc := newAuthService(accounts, "", nil)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, " Ada@Example.com ", "secret1", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	assert.Empty(t, user.SubscriptionTier, "entitlements are not the provider's business")

	_, err = svc.SignUp(ctx, "ada@example.com", "another1", "Ada 2")
	assert.ErrorIs(t, err, ErrEmailInUse)

	signedIn, err := svc.SignIn(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)

	_, err = svc.SignIn(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthValidation(t *testing.T) {
	svc := newAuthService(newTestAccounts(t), "", nil)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "secret1", "x")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.SignUp(ctx, "ok@example.com", "12345", "x")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = svc.SignInFederated(ctx, "good-token")
	assert.ErrorIs(t, err, ErrOperationNotAllowed)
}

func TestAuthDisabledAccount(t *testing.T) {
	accounts := newTestAccounts(t)
	svc := newAuthService(accounts, "", nil)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	account, err := accounts.FindByEmail("ada@example.com")
	require.NoError(t, err)
	account.Disabled = true
	require.NoError(t, accounts.Update(account))

	_, err = svc.SignIn(ctx, "ada@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestAuthFederatedSignIn(t *testing.T) {
	accounts := newTestAccounts(t)
	svc := newAuthService(accounts, "client-id", googleVerifier("g-1", "Grace@example.com", "Grace"))
	ctx := context.Background()

	_, err := svc.SignInFederated(ctx, "")
	assert.ErrorIs(t, err, ErrFederatedCancelled)
	_, err = svc.SignInFederated(ctx, "forged")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	first, err := svc.SignInFederated(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", first.Email)
	assert.Equal(t, "Grace", first.Name)

	second, err := svc.SignInFederated(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same subject, same account")
}

func TestAuthFederatedLinksExistingEmail(t *testing.T) {
	accounts := newTestAccounts(t)
	ctx := context.Background()
	password := newAuthService(accounts, "", nil)
	existing, err := password.SignUp(ctx, "grace@example.com", "secret1", "Grace")
	require.NoError(t, err)

	svc := newAuthService(accounts, "client-id", googleVerifier("g-1", "grace@example.com", "Grace"))
	linked, err := svc.SignInFederated(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
}

func TestAuthErrorMessage(t *testing.T) {
	cases := map[error]string{
		ErrEmailInUse:          "Email already registered.",
		ErrInvalidEmail:        "Invalid email address.",
		ErrOperationNotAllowed: "Operation not allowed.",
		ErrWeakPassword:        "Password too weak.",
		ErrUserDisabled:        "Account has been disabled.",
		ErrInvalidCredentials:  "Invalid credentials.",
		ErrFederatedCancelled:  "Sign-in cancelled.",
		errors.New("boom"):     "Authentication failed. Please try again.",
	}
	for err, want := range cases {
		assert.Equal(t, want, AuthErrorMessage(err))
	}
}
