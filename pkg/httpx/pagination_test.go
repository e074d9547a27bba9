package httpx

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePageParams(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/users", nil)
		p := ParsePageParams(r)
		require.Equal(t, 1, p.Page)
		require.Equal(t, DefaultPageSize, p.PageSize)
		require.Equal(t, 0, p.Offset())
	})

	t.Run("explicit values", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/users?page=3&page_size=25", nil)
		p := ParsePageParams(r)
		require.Equal(t, 3, p.Page)
		require.Equal(t, 25, p.PageSize)
		require.Equal(t, 50, p.Offset())
	})

	t.Run("page_size clamped to maximum", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/users?page_size=10000", nil)
		p := ParsePageParams(r)
		require.Equal(t, MaxPageSize, p.PageSize)
	})

	t.Run("garbage falls back to defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/users?page=zero&page_size=-4", nil)
		p := ParsePageParams(r)
		require.Equal(t, 1, p.Page)
		require.Equal(t, DefaultPageSize, p.PageSize)
	})
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	page := NewPage(PageParams{Page: 2, PageSize: 10}, 25, []string{"a", "b"})
	require.Equal(t, 25, page.Count)
	require.Equal(t, 2, page.PageNum)
	require.Equal(t, 3, page.TotalPages)

	empty := NewPage(PageParams{Page: 1, PageSize: 10}, 0, nil)
	require.Equal(t, 0, empty.TotalPages)
}
