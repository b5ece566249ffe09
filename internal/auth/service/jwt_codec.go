package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
)

// accessClaims is the JWT payload of an access credential.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwtCodec struct {
	secret []byte
	now    func() time.Time
}

// NewJWTCodec returns an HS256 TokenCodec signing with secret.
func NewJWTCodec(secret []byte) TokenCodec {
	return &jwtCodec{secret: secret, now: time.Now}
}

// IssueAccess signs {sub, email, iat, exp}.
func (c *jwtCodec) IssueAccess(subjectID uuid.UUID, email string, ttl time.Duration) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, authDomain.ErrMissingSigningSecret
	}

	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses token, accepting HS256 only.
func (c *jwtCodec) Verify(token string) (*authDomain.AccessClaims, error) {
	if len(c.secret) == 0 {
		return nil, authDomain.ErrMissingSigningSecret
	}

	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// The library validates the signature before the claims, so an expiry
		// error implies the signature was good.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authDomain.ErrExpiredCredential
		}
		return nil, authDomain.ErrInvalidCredential
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil || claims.IssuedAt == nil {
		return nil, authDomain.ErrInvalidCredential
	}

	return &authDomain.AccessClaims{
		SubjectID: subjectID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
	}, nil
}
