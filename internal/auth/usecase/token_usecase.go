package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
	authService "github.com/allisson/storefront/internal/auth/service"
	apperrors "github.com/allisson/storefront/internal/errors"
)

// TokenConfig holds the credential lifetimes.
type TokenConfig struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// tokenUseCase implements TokenUseCase.
type tokenUseCase struct {
	cfg            TokenConfig
	tokenRepo      RefreshTokenRepository
	codec          authService.TokenCodec
	generator      authService.RefreshTokenGenerator
	resolveSubject SubjectResolverFunc
	logger         *slog.Logger
	now            func() time.Time
}

// Issue signs an access token and stores the hash of a fresh refresh token.
// The plain refresh token is only returned here.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	subjectID uuid.UUID,
	email string,
) (*authDomain.TokenPair, error) {
	accessToken, accessExpiresAt, err := t.codec.IssueAccess(subjectID, email, t.cfg.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign access token")
	}

	plainToken, tokenHash, err := t.generator.Generate()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate refresh token")
	}

	now := t.now().UTC()
	refreshToken := &authDomain.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		UserID:    subjectID,
		ExpiresAt: now.Add(t.cfg.RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := t.tokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, err
	}

	return &authDomain.TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          plainToken,
		RefreshTokenExpiresAt: refreshToken.ExpiresAt,
	}, nil
}

// Rotate gates issuance on the conditional delete of the presented token, so two
// callers that both passed the lookup cannot both receive a new pair.
func (t *tokenUseCase) Rotate(ctx context.Context, plainRefreshToken string) (*authDomain.RotateOutput, error) {
	tokenHash := t.generator.Hash(plainRefreshToken)

	stored, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return nil, authDomain.ErrInvalidOrExpiredRefresh
		}
		return nil, err
	}

	if stored.IsExpired(t.now().UTC()) {
		// Expired rows are left for the cleanup command.
		return nil, authDomain.ErrInvalidOrExpiredRefresh
	}

	removed, err := t.tokenRepo.DeleteByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if !removed {
		t.logger.Warn("refresh token already rotated",
			slog.String("user_id", stored.UserID.String()),
		)
		return nil, authDomain.ErrInvalidOrExpiredRefresh
	}

	email, err := t.resolveSubject(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}

	pair, err := t.Issue(ctx, stored.UserID, email)
	if err != nil {
		return nil, err
	}

	return &authDomain.RotateOutput{Pair: pair, SubjectID: stored.UserID}, nil
}

// Revoke deletes the refresh token if present.
func (t *tokenUseCase) Revoke(ctx context.Context, plainRefreshToken string) error {
	removed, err := t.tokenRepo.DeleteByTokenHash(ctx, t.generator.Hash(plainRefreshToken))
	if err != nil {
		return err
	}
	if !removed {
		t.logger.Warn("revoke of unknown refresh token")
	}
	return nil
}

// Authenticate verifies an access token with the codec.
func (t *tokenUseCase) Authenticate(ctx context.Context, accessToken string) (*authDomain.AccessClaims, error) {
	return t.codec.Verify(accessToken)
}

// CleanupExpired deletes refresh tokens that expired more than days ago.
func (t *tokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.New("days must be non-negative")
	}

	cutoff := t.now().UTC().AddDate(0, 0, -days)

	if dryRun {
		return t.tokenRepo.CountExpired(ctx, cutoff)
	}
	return t.tokenRepo.DeleteExpired(ctx, cutoff)
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	cfg TokenConfig,
	tokenRepo RefreshTokenRepository,
	codec authService.TokenCodec,
	generator authService.RefreshTokenGenerator,
	resolveSubject SubjectResolverFunc,
	logger *slog.Logger,
) TokenUseCase {
	return &tokenUseCase{
		cfg:            cfg,
		tokenRepo:      tokenRepo,
		codec:          codec,
		generator:      generator,
		resolveSubject: resolveSubject,
		logger:         logger,
		now:            time.Now,
	}
}
