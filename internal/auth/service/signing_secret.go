package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register the KMS drivers accepted in JWT_SECRET_KMS_KEY_URI.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
)

// ResolveSigningSecret returns the access token signing secret. With an empty keyURI the
// configured value is used as is. Otherwise it is a base64 ciphertext decrypted through the
// KMS keeper at keyURI (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://).
func ResolveSigningSecret(ctx context.Context, configured, keyURI string) ([]byte, error) {
	if configured == "" {
		return nil, authDomain.ErrMissingSigningSecret
	}
	if keyURI == "" {
		return []byte(configured), nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(configured)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted signing secret: %w", err)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt signing secret: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, authDomain.ErrMissingSigningSecret
	}
	return plaintext, nil
}
