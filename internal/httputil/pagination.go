package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MaxPageLimit caps the page size of every listing.
const MaxPageLimit = 100

// ParsePagePagination parses the 1-based page and limit query parameters used by
// catalog listings. Page defaults to 1 and limit to defaultLimit.
func ParsePagePagination(c *gin.Context, defaultLimit int) (page, limit int, err error) {
	page, err = positiveQuery(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}

	limit, err = positiveQuery(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit > MaxPageLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageLimit)
	}

	return page, limit, nil
}

func positiveQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s parameter: must be a positive integer", name)
	}
	return n, nil
}
