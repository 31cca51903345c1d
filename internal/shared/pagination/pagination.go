package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is the page size used when none is requested.
	DefaultLimit = 20
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// Params holds normalized limit/offset pagination parameters.
type Params struct {
	Limit  int
	Offset int
}

// FromQuery extracts pagination parameters from the request query.
// Out-of-range values are clamped rather than rejected.
func FromQuery(c *gin.Context) Params {
	limit := parseIntDefault(c.Query("limit"), DefaultLimit)
	offset := parseIntDefault(c.Query("offset"), 0)

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
