package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
)

// Key prefixes, one per domain.
const (
	UserPrefix        = "user:"
	CartPrefix        = "cart:"
	ProductPrefix     = "product:"
	ProductListPrefix = "products:"
)

// UserKey addresses a cached user profile.
func UserKey(id uuid.UUID) string { return UserPrefix + id.String() }

// CartKey addresses a user's cached cart.
func CartKey(userID uuid.UUID) string { return CartPrefix + userID.String() }

// ProductKey addresses a cached product.
func ProductKey(id uuid.UUID) string { return ProductPrefix + id.String() }

// ProductListKey addresses a cached product listing. The suffix is the hex SHA-256 of the
// query's JSON encoding, so equal queries share an entry and the key length stays bounded.
func ProductListKey(query any) (string, error) {
	raw, err := json.Marshal(query)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return ProductListPrefix + hex.EncodeToString(sum[:]), nil
}
