package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krupapatkar/appsolution-admin/internal/errs"
)

func TestNormalizePageDefaults(t *testing.T) {
	page, err := NormalizePage(0, 0, DefaultProductPageSize)
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 1, Size: 9}, page)

	page, err = NormalizePage(3, 0, DefaultBlogPageSize)
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 3, Size: 6}, page)

	page, err = NormalizePage(0, 25, DefaultAdminPageSize)
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 1, Size: 25}, page)
}

func TestNormalizePageRejectsNegatives(t *testing.T) {
	_, err := NormalizePage(-1, 0, 9)
	assert.True(t, errs.IsValidation(err))

	_, err = NormalizePage(1, -5, 9)
	assert.True(t, errs.IsValidation(err))
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, Size: 9}.Offset())
	assert.Equal(t, 9, Page{Number: 2, Size: 9}.Offset())
	assert.Equal(t, 40, Page{Number: 5, Size: 10}.Offset())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 9))
	assert.Equal(t, 1, TotalPages(1, 9))
	assert.Equal(t, 1, TotalPages(9, 9))
	assert.Equal(t, 2, TotalPages(10, 9))
	assert.Equal(t, 4, TotalPages(31, 10))
	assert.Equal(t, 0, TotalPages(10, 0))
}
