package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/shopspring/decimal"
)

// GetIDParam parses a positive numeric path parameter such as :id.
func GetIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, fmt.Errorf("%s not found", name)
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		return 0, fmt.Errorf("Invalid %s", name)
	}

	return uint(id), nil
}

// QueryUint returns nil when the query parameter is absent.
func QueryUint(ctx *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%s must be a positive integer", name)
	}

	v := uint(value)
	return &v, nil
}

// QueryDate parses a YYYY-MM-DD query parameter.
func QueryDate(ctx *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD format", name)
	}

	return &date, nil
}

func QueryDecimal(ctx *gin.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, nil
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a decimal number", name)
	}

	return &value, nil
}

// QueryPage reads skip and limit; an absent limit means the default.
func QueryPage(ctx *gin.Context) (repository.Page, error) {
	var page repository.Page

	if raw := ctx.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return page, errors.New("skip must be a non-negative integer")
		}
		page.Skip = skip
	}

	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > repository.MaxLimit {
			return page, errors.New("limit must be between 1 and 100")
		}
		page.Limit = limit
	}

	return page, nil
}

// ParseDate parses a YYYY-MM-DD body field.
func ParseDate(raw string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errors.New("date must be in YYYY-MM-DD format")
	}
	return date, nil
}
