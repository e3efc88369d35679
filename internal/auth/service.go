// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
)

// OperatorInfo carries the dashboard operator fields auth needs for
// credential checks and token minting.
type OperatorInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
	Permissions  []string
	TokenVersion int
}

// OperatorProvider is implemented by the account service. Operators are
// admin accounts; there is no self-registration on this surface.
type OperatorProvider interface {
	GetOperatorByEmail(ctx context.Context, email string) (*OperatorInfo, error)
	GetOperatorByID(ctx context.Context, id string) (*OperatorInfo, error)
	IncrementTokenVersion(ctx context.Context, accountID string) error
	UpdatePasswordHash(ctx context.Context, accountID, passwordHash string) error
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	operators    OperatorProvider
	redis        *redis.Client
	blacklistTTL time.Duration
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	operators OperatorProvider,
	redisClient *redis.Client,
) *Service {
	return &Service{
		repo:         repo,
		jwt:          jwt,
		operators:    operators,
		redis:        redisClient,
		blacklistTTL: 15 * time.Minute,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	operator, err := s.operators.GetOperatorByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get operator: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&operator.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.operators.UpdatePasswordHash(ctx, operator.ID, newHash)
	}

	return s.createAuthResponse(ctx, operator, userAgent, ipAddress, "", nil)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if !core.CompareTokenHash(refreshToken, storedToken.TokenHash) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}

	if storedToken.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.repo.RevokeByFamilyID(ctx, storedToken.FamilyID)
		return nil, ErrTokenReuse
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	operator, err := s.operators.GetOperatorByID(ctx, storedToken.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get operator: %w", err)
	}

	return s.createAuthResponse(
		ctx,
		operator,
		userAgent,
		ipAddress,
		storedToken.FamilyID,
		&storedToken.ID,
	)
}

func (s *Service) Logout(
	ctx context.Context,
	refreshToken, accountID string,
) error {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find token: %w", err)
	}

	if storedToken.AccountID != accountID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, storedToken.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, accountID string) error {
	if err := s.repo.RevokeAllForAccount(ctx, accountID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.operators.IncrementTokenVersion(ctx, accountID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	key := "blacklist:" + jti

	ttl := s.blacklistTTL
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	key := "blacklist:" + jti

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	accountID string,
) ([]SessionInfo, error) {
	tokens, err := s.repo.GetActiveSessionsForAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	accountID, sessionID string,
) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if token.AccountID != accountID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

// ChangeOwnPassword verifies the operator's current credential before
// rotating it; the dashboard-side password reset for managed accounts
// goes through the account service instead.
func (s *Service) ChangeOwnPassword(
	ctx context.Context,
	accountID, currentPassword, newPassword string,
) error {
	operator, err := s.operators.GetOperatorByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get operator: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		operator.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	if err := s.RotatePassword(ctx, accountID, newPassword); err != nil {
		return err
	}

	if err := s.LogoutAll(ctx, accountID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

// RotatePassword hashes and stores a new credential without checking the
// old one. The account service delegates its password mutation here after
// running its own permission and confirmation checks.
func (s *Service) RotatePassword(
	ctx context.Context,
	accountID, newPassword string,
) error {
	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.operators.UpdatePasswordHash(ctx, accountID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// CleanupExpiredTokens removes refresh tokens that expired more than a
// day ago. Keeping them briefly past expiry preserves the reuse-detection
// audit trail.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

func (s *Service) ValidateTokenVersion(
	ctx context.Context,
	accountID string,
	tokenVersion int,
) error {
	operator, err := s.operators.GetOperatorByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get operator: %w", err)
	}

	if tokenVersion < operator.TokenVersion {
		return fmt.Errorf("validate token version: %w", core.ErrTokenRevoked)
	}

	return nil
}

func (s *Service) GetCurrentOperator(
	ctx context.Context,
	accountID string,
) (*OperatorResponse, error) {
	operator, err := s.operators.GetOperatorByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &OperatorResponse{
		ID:          operator.ID,
		Email:       operator.Email,
		Name:        operator.Name,
		Role:        operator.Role,
		Permissions: operator.Permissions,
	}, nil
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	operator *OperatorInfo,
	userAgent, ipAddress, familyID string,
	oldTokenID *string,
) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		AccountID:    operator.ID,
		Role:         operator.Role,
		Permissions:  operator.Permissions,
		TokenVersion: operator.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(operator.ID, familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	refreshTokenEntity := &RefreshToken{
		ID:        newTokenID,
		AccountID: operator.ID,
		TokenHash: refreshData.Hash,
		FamilyID:  refreshData.FamilyID,
		ExpiresAt: refreshData.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.repo.MarkAsUsed(ctx, *oldTokenID, newTokenID)
	}

	return &AuthResponse{
		Operator: OperatorResponse{
			ID:          operator.ID,
			Email:       operator.Email,
			Name:        operator.Name,
			Role:        operator.Role,
			Permissions: operator.Permissions,
		},
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshData.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.jwt.config.AccessTokenExpire / time.Second),
			ExpiresAt:    time.Now().Add(s.jwt.config.AccessTokenExpire),
		},
	}, nil
}
