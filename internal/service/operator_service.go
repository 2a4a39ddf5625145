package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canopy-pos/internal/domain"
	"canopy-pos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Token expiration times
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
)

// OperatorService defines the interface for operator auth and lookup
type OperatorService interface {
	Register(ctx context.Context, email, password, firstName, lastName, role string) (*domain.Operator, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, operator *domain.Operator, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetOperatorByID(ctx context.Context, operatorID uuid.UUID) (*domain.Operator, error)
}

// Claims represents the JWT claims
type Claims struct {
	OperatorID uuid.UUID `json:"operator_id"`
	Role       string    `json:"role"`
	jwt.RegisteredClaims
}

type operatorService struct {
	operatorRepo     repository.OperatorRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
}

// NewOperatorService creates a new instance of OperatorService
func NewOperatorService(
	operatorRepo repository.OperatorRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtSecret string,
) OperatorService {
	return &operatorService{
		operatorRepo:     operatorRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        jwtSecret,
	}
}

// Register creates a new operator account with hashed password
func (s *operatorService) Register(ctx context.Context, email, password, firstName, lastName, role string) (*domain.Operator, error) {
	existing, err := s.operatorRepo.FindByEmail(ctx, email)
	if err != nil && err != repository.ErrOperatorNotFound {
		return nil, fmt.Errorf("failed to check existing operator: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrOperatorAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if role == "" {
		role = "cashier"
	}

	operator := &domain.Operator{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.operatorRepo.Create(ctx, operator); err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	return operator, nil
}

// Login authenticates an operator and returns JWT tokens
func (s *operatorService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, operator *domain.Operator, err error) {
	operator, err = s.operatorRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrOperatorNotFound {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.generateAccessToken(operator)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, operator)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, operator, nil
}

// Logout invalidates the refresh token
func (s *operatorService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if err == repository.ErrRefreshTokenNotFound {
			// Already gone, treat as logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *operatorService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if err == repository.ErrRefreshTokenNotFound || err == repository.ErrRefreshTokenRevoked {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	operator, err := s.operatorRepo.FindByID(ctx, refreshToken.OperatorID)
	if err != nil {
		return "", fmt.Errorf("failed to find operator: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(operator)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *operatorService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetOperatorByID retrieves an operator by ID
func (s *operatorService) GetOperatorByID(ctx context.Context, operatorID uuid.UUID) (*domain.Operator, error) {
	operator, err := s.operatorRepo.FindByID(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return operator, nil
}

// generateAccessToken generates a JWT access token with operator ID and role claims
func (s *operatorService) generateAccessToken(operator *domain.Operator) (string, error) {
	expirationTime := time.Now().Add(AccessTokenExpiration)
	claims := &Claims{
		OperatorID: operator.ID,
		Role:       operator.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *operatorService) generateRefreshToken(ctx context.Context, operator *domain.Operator) (string, error) {
	tokenString := uuid.New().String()

	refreshToken := &domain.RefreshToken{
		ID:         uuid.New(),
		OperatorID: operator.ID,
		Token:      tokenString,
		ExpiresAt:  time.Now().Add(RefreshTokenExpiration),
		CreatedAt:  time.Now(),
		Revoked:    false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
