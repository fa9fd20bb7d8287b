package pagination

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParams(t *testing.T) {
	tests := []struct {
		page, limit int
		wantPage    int
		wantLimit   int
		wantOffset  int
	}{
		{1, 20, 1, 20, 0},
		{3, 10, 3, 10, 20},
		{0, 0, 1, DefaultLimit, 0},
		{-4, 500, 1, MaxLimit, 0},
	}

	for _, tt := range tests {
		p := NewParams(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, p.Page)
		assert.Equal(t, tt.wantLimit, p.Limit)
		assert.Equal(t, tt.wantOffset, p.Offset)
	}
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(NewParams(2, 10), 25)

	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = GetMeta(NewParams(1, 10), 0)
	assert.Zero(t, meta.TotalPages)
	assert.False(t, meta.HasNext)
}

func TestGetParams(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		p := GetParams(c)
		return c.JSON(p)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?page=2&limit=abc", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.JSONEq(t, `{"page":2,"limit":20}`, string(body))
}
