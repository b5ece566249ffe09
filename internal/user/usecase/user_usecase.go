package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authUseCase "github.com/allisson/storefront/internal/auth/usecase"
	"github.com/allisson/storefront/internal/cache"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/events"
	"github.com/allisson/storefront/internal/user/domain"
	appValidation "github.com/allisson/storefront/internal/validation"
)

// UserUseCase coordinates the user store, the token use case, the profile cache
// and the identity event stream.
type UserUseCase struct {
	userRepo       UserRepository
	tokens         authUseCase.TokenUseCase
	cache          *cache.Cache
	publisher      EventPublisher
	passwordHasher *pwdhash.PasswordHasher
	profileTTL     time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	userRepo UserRepository,
	tokens authUseCase.TokenUseCase,
	profileCache *cache.Cache,
	publisher EventPublisher,
	profileTTL time.Duration,
	logger *slog.Logger,
) (*UserUseCase, error) {
	// Initialize password hasher with interactive policy for user passwords
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &UserUseCase{
		userRepo:       userRepo,
		tokens:         tokens,
		cache:          profileCache,
		publisher:      publisher,
		passwordHasher: hasher,
		profileTTL:     profileTTL,
		logger:         logger,
		now:            time.Now,
	}, nil
}

func validateRegisterInput(input RegisterInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(2, 255).Error("name must be between 2 and 255 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			appValidation.Password,
		),
	)
	return appValidation.WrapValidationError(err)
}

func validateLoginInput(input LoginInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.Email,
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
		),
	)
	return appValidation.WrapValidationError(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new identity. The user row is written first, then the
// profile is cached, then the credential pair is issued and finally the
// registration is published. A lost event does not fail the registration.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !apperrors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	now := uc.now().UTC()
	user := &domain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The unique index still guards the race between the lookup above and this insert.
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := user.Profile()
	uc.cache.Set(ctx, cache.UserKey(user.ID), profile, uc.profileTTL)

	pair, err := uc.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.ExchangeIdentity, events.RoutingKeyUserRegistered, events.UserRegistered{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Timestamp: now,
	})

	uc.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	return &AuthResult{User: profile, Tokens: pair}, nil
}

// Login verifies the credentials and issues a new pair. Unknown emails and wrong
// passwords produce the same error.
func (uc *UserUseCase) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := validateLoginInput(input); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if apperrors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := uc.passwordHasher.Verify([]byte(input.Password), user.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to verify password")
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	profile := user.Profile()
	uc.cache.Set(ctx, cache.UserKey(user.ID), profile, uc.profileTTL)

	pair, err := uc.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: profile, Tokens: pair}, nil
}

// Refresh rotates the refresh credential and returns the new pair with the current profile.
func (uc *UserUseCase) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "refresh token is required")
	}

	output, err := uc.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	profile, err := uc.Profile(ctx, output.SubjectID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: profile, Tokens: output.Pair}, nil
}

// Logout revokes the refresh credential. Revoking an unknown credential succeeds.
func (uc *UserUseCase) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "refresh token is required")
	}
	return uc.tokens.Revoke(ctx, refreshToken)
}

// Profile returns the password-free user, served from the cache when possible.
func (uc *UserUseCase) Profile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return cache.GetOrLoad(ctx, uc.cache, cache.UserKey(userID), uc.profileTTL,
		func(ctx context.Context) (*domain.Profile, error) {
			user, err := uc.userRepo.GetByID(ctx, userID)
			if err != nil {
				return nil, err
			}
			return user.Profile(), nil
		},
	)
}

// SubjectResolver adapts a UserRepository to the token use case, which needs the
// subject's current email to issue a rotated access token.
func SubjectResolver(userRepo UserRepository) authUseCase.SubjectResolverFunc {
	return func(ctx context.Context, subjectID uuid.UUID) (string, error) {
		user, err := userRepo.GetByID(ctx, subjectID)
		if err != nil {
			return "", err
		}
		return user.Email, nil
	}
}
