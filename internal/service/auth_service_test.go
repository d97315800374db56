package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	"task_api/internal/models"
	"task_api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

// mockUsers is a lightweight in-test mock for repository.Users.
type mockUsers struct {
	CreateFn     func(u models.User) (models.User, error)
	GetByEmailFn func(email string) (*models.User, error)

	created   []models.User
	getEmails []string
}

func (m *mockUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.created = append(m.created, u)
	return m.CreateFn(u)
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.getEmails = append(m.getEmails, email)
	return m.GetByEmailFn(email)
}

func noUser(string) (*models.User, error) { return nil, nil }

func newTestAuth(users repository.Users) *AuthService {
	return NewAuthService(users, NewPasswordHasher(bcrypt.MinCost), NewTokenManager(testSecret, time.Hour))
}

// --- Register tests ---

func TestAuthService_Register_SuccessHashesPasswordAndIssuesToken(t *testing.T) {
	mock := &mockUsers{
		GetByEmailFn: noUser,
		CreateFn: func(u models.User) (models.User, error) {
			u.ID = "u-42"
			return u, nil
		},
	}
	svc := newTestAuth(mock)

	res, err := svc.Register(context.Background(), "alice@x.com", "s3cr3t", "alice")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.ID != "u-42" || res.Username != "alice" || res.Token == "" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Ensure Create called exactly once with hashed password (not equal to raw) and valid bcrypt.
	if len(mock.created) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(mock.created))
	}
	stored := mock.created[0]
	if stored.Email != "alice@x.com" || stored.Username != "alice" {
		t.Errorf("unexpected stored user: %+v", stored)
	}
	if stored.PasswordHash == "s3cr3t" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if !svc.hasher.Verify(stored.PasswordHash, "s3cr3t") {
		t.Errorf("stored hash does not verify with original password")
	}

	id, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if id.UserID != "u-42" {
		t.Fatalf("token subject: got %q, want u-42", id.UserID)
	}
}

func TestAuthService_Register_DuplicateFromLookup(t *testing.T) {
	mock := &mockUsers{
		GetByEmailFn: func(email string) (*models.User, error) {
			return &models.User{ID: "u-1", Email: email}, nil
		},
		CreateFn: func(u models.User) (models.User, error) {
			t.Fatal("Create should not be called for a known email")
			return models.User{}, nil
		},
	}

	_, err := newTestAuth(mock).Register(context.Background(), "a@x.com", "secret1", "A")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_DuplicateFromStoreConstraint(t *testing.T) {
	mock := &mockUsers{
		GetByEmailFn: noUser,
		CreateFn: func(u models.User) (models.User, error) {
			return models.User{}, repository.ErrDuplicateEmail
		},
	}

	_, err := newTestAuth(mock).Register(context.Background(), "a@x.com", "secret1", "A")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_Failures(t *testing.T) {
	cases := []struct {
		name     string
		password string
		users    *mockUsers
	}{
		{
			name:     "lookup error",
			password: "secret1",
			users: &mockUsers{
				GetByEmailFn: func(string) (*models.User, error) { return nil, errors.New("db down") },
			},
		},
		{
			name:     "create error",
			password: "secret1",
			users: &mockUsers{
				GetByEmailFn: noUser,
				CreateFn:     func(models.User) (models.User, error) { return models.User{}, errors.New("db down") },
			},
		},
		{
			name:     "password over bcrypt limit",
			password: strings.Repeat("a", MaxPasswordBytes+1),
			users:    &mockUsers{GetByEmailFn: noUser},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestAuth(tc.users).Register(context.Background(), "a@x.com", tc.password, "A")
			if !errors.Is(err, ErrRegistrationFailed) {
				t.Fatalf("expected ErrRegistrationFailed, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_WhitespacePasswordIsHashed(t *testing.T) {
	mock := &mockUsers{
		GetByEmailFn: noUser,
		CreateFn: func(u models.User) (models.User, error) {
			u.ID = "u-1"
			return u, nil
		},
	}
	svc := newTestAuth(mock)

	if _, err := svc.Register(context.Background(), "a@x.com", "      ", "A"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !svc.hasher.Verify(mock.created[0].PasswordHash, "      ") {
		t.Fatalf("stored hash does not verify with the whitespace password")
	}
}

// --- Login tests ---

func TestAuthService_Login_Success(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("letmein")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	mock := &mockUsers{
		GetByEmailFn: func(email string) (*models.User, error) {
			if email != "diana@x.com" {
				t.Fatalf("expected email diana@x.com, got %q", email)
			}
			return &models.User{ID: "u-7", Email: email, Username: "diana", PasswordHash: hash}, nil
		},
	}
	svc := newTestAuth(mock)

	res, err := svc.Login(context.Background(), "diana@x.com", "letmein")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.ID != "u-7" || res.Username != "diana" {
		t.Fatalf("unexpected result: %+v", res)
	}

	id, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if id.UserID != "u-7" {
		t.Fatalf("expected user id u-7 from token, got %q", id.UserID)
	}
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	hash, err := NewPasswordHasher(bcrypt.MinCost).Hash("correct")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	mock := &mockUsers{
		GetByEmailFn: func(email string) (*models.User, error) {
			if email == "eve@x.com" {
				return &models.User{ID: "u-1", Email: email, PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}
	svc := newTestAuth(mock)

	_, wrongPw := svc.Login(context.Background(), "eve@x.com", "wrong")
	_, unknown := svc.Login(context.Background(), "ghost@x.com", "correct")

	if !errors.Is(wrongPw, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPw, unknown)
	}
	if wrongPw.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPw, unknown)
	}
}

func TestAuthService_Login_RepoError(t *testing.T) {
	mock := &mockUsers{
		GetByEmailFn: func(string) (*models.User, error) {
			return nil, errors.New("query failed")
		},
	}

	_, err := newTestAuth(mock).Login(context.Background(), "john@x.com", "pw1234")
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
}

// --- ParseToken tests ---

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func TestAuthService_ParseToken_Malformed(t *testing.T) {
	_, err := newTestAuth(&mockUsers{}).ParseToken("not-a-jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_ParseToken_InvalidSignature(t *testing.T) {
	now := time.Now()
	bad := signClaims(t, jwt.SigningMethodHS256, []byte("different-key"), &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-5",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	if _, err := newTestAuth(&mockUsers{}).ParseToken(bad); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature verification error, got %v", err)
	}
}

func TestAuthService_ParseToken_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	expired := signClaims(t, jwt.SigningMethodHS256, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-11",
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Minute)),
		},
	})

	if _, err := newTestAuth(&mockUsers{}).ParseToken(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected error for expired token, got %v", err)
	}
}

func TestAuthService_ParseToken_MissingExpiry(t *testing.T) {
	forever := signClaims(t, jwt.SigningMethodHS256, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"},
	})

	if _, err := newTestAuth(&mockUsers{}).ParseToken(forever); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected error for token without exp, got %v", err)
	}
}

func TestAuthService_ParseToken_LegacyIDClaim(t *testing.T) {
	legacy := signClaims(t, jwt.SigningMethodHS256, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		UserID:           "643f0c0933c8d7b3755dba9a",
	})

	id, err := newTestAuth(&mockUsers{}).ParseToken(legacy)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if id.UserID != "643f0c0933c8d7b3755dba9a" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestAuthService_ParseToken_UnexpectedAlg(t *testing.T) {
	// Generate RSA key for RS256 signing
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}
	tokenStr := signClaims(t, jwt.SigningMethodRS256, privateKey, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-12",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	if _, err := newTestAuth(&mockUsers{}).ParseToken(tokenStr); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected error due to unexpected signing method, got %v", err)
	}
}

func TestTokenManager_FixedLifetime(t *testing.T) {
	m := NewTokenManager(testSecret, 0)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	tok, err := m.Issue("u-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = func() time.Time { return issued.Add(DefaultTokenTTL - time.Second) }
	if _, err := m.Parse(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	m.now = func() time.Time { return issued.Add(DefaultTokenTTL + time.Second) }
	if _, err := m.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token should have expired, got %v", err)
	}
}
