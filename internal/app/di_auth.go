package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	authMySQL "github.com/allisson/storefront/internal/auth/repository/mysql"
	authPostgreSQL "github.com/allisson/storefront/internal/auth/repository/postgresql"
	authService "github.com/allisson/storefront/internal/auth/service"
	authUseCase "github.com/allisson/storefront/internal/auth/usecase"
)

// SigningSecret returns the access token signing secret, decrypted through the
// configured keeper when JWT_SECRET_KMS_KEY_URI is set.
func (c *Container) SigningSecret() ([]byte, error) {
	var err error
	c.signingSecretInit.Do(func() {
		c.signingSecret, err = c.initSigningSecret()
		if err != nil {
			c.initErrors["signingSecret"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signingSecret"]; exists {
		return nil, storedErr
	}
	return c.signingSecret, nil
}

// TokenCodec returns the access token codec.
func (c *Container) TokenCodec() (authService.TokenCodec, error) {
	var err error
	c.tokenCodecInit.Do(func() {
		c.tokenCodec, err = c.initTokenCodec()
		if err != nil {
			c.initErrors["tokenCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenCodec"]; exists {
		return nil, storedErr
	}
	return c.tokenCodec, nil
}

// RefreshTokenRepository returns the refresh token repository based on database driver.
func (c *Container) RefreshTokenRepository() (authUseCase.RefreshTokenRepository, error) {
	var err error
	c.refreshTokenRepoInit.Do(func() {
		c.refreshTokenRep, err = repositoryFor[authUseCase.RefreshTokenRepository](
			c,
			"refresh token",
			func(db *sql.DB) authUseCase.RefreshTokenRepository {
				return authPostgreSQL.NewPostgreSQLRefreshTokenRepository(db)
			},
			func(db *sql.DB) authUseCase.RefreshTokenRepository {
				return authMySQL.NewMySQLRefreshTokenRepository(db)
			},
		)
		if err != nil {
			c.initErrors["refreshTokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["refreshTokenRepo"]; exists {
		return nil, storedErr
	}
	return c.refreshTokenRep, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

func (c *Container) initSigningSecret() ([]byte, error) {
	secret, err := authService.ResolveSigningSecret(
		c.ctx,
		c.config.JWTSecret,
		c.config.JWTSecretKMSKeyURI,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token signing secret: %w", err)
	}
	return secret, nil
}

func (c *Container) initTokenCodec() (authService.TokenCodec, error) {
	secret, err := c.SigningSecret()
	if err != nil {
		return nil, err
	}
	return authService.NewJWTCodec(secret), nil
}

// initTokenUseCase wires the token use case. Rotation looks the subject up through the
// user repository so a refreshed access token carries the current email.
func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	logger := c.Logger()

	tokenRepo, err := c.RefreshTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token repository for token use case: %w", err)
	}

	codec, err := c.TokenCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get token codec for token use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for token use case: %w", err)
	}

	resolveSubject := func(ctx context.Context, subjectID uuid.UUID) (string, error) {
		user, err := userRepo.GetByID(ctx, subjectID)
		if err != nil {
			return "", err
		}
		return user.Email, nil
	}

	baseUseCase := authUseCase.NewTokenUseCase(
		authUseCase.TokenConfig{
			AccessTokenTTL:  c.config.AccessTokenExpiration,
			RefreshTokenTTL: c.config.RefreshTokenExpiration,
		},
		tokenRepo,
		codec,
		authService.NewRefreshTokenGenerator(),
		resolveSubject,
		logger,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
