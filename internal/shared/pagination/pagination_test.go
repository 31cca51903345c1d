package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/orders"+query, nil)
	return FromQuery(c)
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Params
	}{
		{"defaults", "", Params{Limit: DefaultLimit, Offset: 0}},
		{"explicit values", "?limit=10&offset=30", Params{Limit: 10, Offset: 30}},
		{"limit clamped to max", "?limit=5000", Params{Limit: MaxLimit, Offset: 0}},
		{"negative values clamped", "?limit=-5&offset=-1", Params{Limit: DefaultLimit, Offset: 0}},
		{"garbage falls back to defaults", "?limit=abc&offset=xyz", Params{Limit: DefaultLimit, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, paramsFor(t, tt.query))
		})
	}
}
