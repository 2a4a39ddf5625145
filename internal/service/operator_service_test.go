package service

import (
	"context"
	"testing"

	"canopy-pos/internal/domain"
	"canopy-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

type mockOperatorRepository struct {
	operators map[string]*domain.Operator
}

func newMockOperatorRepository() *mockOperatorRepository {
	return &mockOperatorRepository{operators: make(map[string]*domain.Operator)}
}

func (m *mockOperatorRepository) Create(ctx context.Context, operator *domain.Operator) error {
	if _, exists := m.operators[operator.Email]; exists {
		return repository.ErrOperatorAlreadyExists
	}
	m.operators[operator.Email] = operator
	return nil
}

func (m *mockOperatorRepository) FindByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	operator, exists := m.operators[email]
	if !exists {
		return nil, repository.ErrOperatorNotFound
	}
	return operator, nil
}

func (m *mockOperatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	for _, operator := range m.operators {
		if operator.ID == id {
			return operator, nil
		}
	}
	return nil, repository.ErrOperatorNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func newTestOperatorService() (OperatorService, *mockOperatorRepository, *mockRefreshTokenRepository) {
	operatorRepo := newMockOperatorRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	return NewOperatorService(operatorRepo, refreshTokenRepo, "test-secret"), operatorRepo, refreshTokenRepo
}

func TestRegisterDefaultsToCashier(t *testing.T) {
	svc, _, _ := newTestOperatorService()

	operator, err := svc.Register(context.Background(), "till@example.com", "hunter22!", "Sam", "Park", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if operator.Role != "cashier" {
		t.Errorf("role = %q, want cashier", operator.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestOperatorService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@example.com", "hunter22!", "A", "B", "manager"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(ctx, "dup@example.com", "other-pass", "C", "D", "cashier")
	if err != repository.ErrOperatorAlreadyExists {
		t.Errorf("err = %v, want ErrOperatorAlreadyExists", err)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc, _, _ := newTestOperatorService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "op@example.com", "correct-horse", "A", "B", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, _, err := svc.Login(ctx, "op@example.com", "wrong")
	if err != ErrInvalidCredentials {
		t.Errorf("bad password err = %v, want ErrInvalidCredentials", err)
	}

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
	if err != ErrInvalidCredentials {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _, _ := newTestOperatorService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "op@example.com", "correct-horse", "A", "B", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, refreshToken, _, err := svc.Login(ctx, "op@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, refreshToken); err != nil {
		t.Fatalf("RefreshToken before logout: %v", err)
	}

	if err := svc.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, refreshToken); err == nil {
		t.Error("revoked refresh token still mints access tokens")
	}
}

func TestProperty_RegistrationHashesPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are stored as bcrypt hashes, never plaintext", prop.ForAll(
		func(email string, password string) bool {
			svc, operatorRepo, _ := newTestOperatorService()
			ctx := context.Background()

			operator, err := svc.Register(ctx, email, password, "First", "Last", "cashier")
			if err != nil {
				return true
			}

			if operator.PasswordHash == password {
				t.Logf("FAIL: password stored as plaintext for %s", email)
				return false
			}
			if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: stored hash does not verify: %v", err)
				return false
			}

			stored, err := operatorRepo.FindByEmail(ctx, email)
			if err != nil || stored.PasswordHash != operator.PasswordHash {
				t.Logf("FAIL: stored operator hash mismatch")
				return false
			}
			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_AccessTokensCarryOperatorClaims(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("access tokens carry operator id, role, and expiry", prop.ForAll(
		func(email string, password string, role string) bool {
			svc, _, _ := newTestOperatorService()
			ctx := context.Background()

			operator, err := svc.Register(ctx, email, password, "First", "Last", role)
			if err != nil {
				return true
			}

			accessToken, _, _, err := svc.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: login failed: %v", err)
				return false
			}

			claims, err := svc.ValidateToken(accessToken)
			if err != nil {
				t.Logf("FAIL: token validation failed: %v", err)
				return false
			}
			if claims.OperatorID != operator.ID {
				t.Logf("FAIL: operator id claim mismatch")
				return false
			}
			if claims.Role != role {
				t.Logf("FAIL: role claim = %q, want %q", claims.Role, role)
				return false
			}
			if claims.ExpiresAt == nil || claims.IssuedAt == nil {
				t.Logf("FAIL: token missing expiry or issued-at")
				return false
			}
			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.OneConstOf("cashier", "manager"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestOperatorService()

	if _, err := svc.ValidateToken("not-a-jwt"); err == nil {
		t.Error("garbage token validated")
	}
}
