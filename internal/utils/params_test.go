package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return ctx
}

func TestGetIDParam(t *testing.T) {
	ctx := testContext(t, "/")

	ctx.Params = gin.Params{{Key: "id", Value: "42"}}
	id, err := GetIDParam(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, raw := range []string{"", "0", "-1", "abc", "99999999999"} {
		ctx.Params = gin.Params{{Key: "id", Value: raw}}
		_, err := GetIDParam(ctx, "id")
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestQueryPage(t *testing.T) {
	page, err := QueryPage(testContext(t, "/?skip=5&limit=20"))
	require.NoError(t, err)
	assert.Equal(t, repository.Page{Skip: 5, Limit: 20}, page)

	page, err = QueryPage(testContext(t, "/"))
	require.NoError(t, err)
	assert.Equal(t, repository.Page{}, page)

	for _, query := range []string{"?skip=-1", "?skip=x", "?limit=0", "?limit=101", "?limit=x"} {
		_, err := QueryPage(testContext(t, "/"+query))
		assert.Error(t, err, "query %s", query)
	}
}

func TestQueryFilters(t *testing.T) {
	ctx := testContext(t, "/?start_date=2024-01-31&min_amount=10.50&category_id=3")

	date, err := QueryDate(ctx, "start_date")
	require.NoError(t, err)
	require.NotNil(t, date)
	assert.Equal(t, "2024-01-31", date.Format("2006-01-02"))

	amount, err := QueryDecimal(ctx, "min_amount")
	require.NoError(t, err)
	require.NotNil(t, amount)
	assert.Equal(t, "10.50", amount.StringFixed(2))

	category, err := QueryUint(ctx, "category_id")
	require.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, uint(3), *category)

	missing, err := QueryDate(ctx, "end_date")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = QueryDate(testContext(t, "/?start_date=31-01-2024"), "start_date")
	assert.Error(t, err)
	_, err = QueryDecimal(testContext(t, "/?min_amount=ten"), "min_amount")
	assert.Error(t, err)
}
