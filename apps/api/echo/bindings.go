package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/payment"
)

var errInvalidQuery = errors.New("invalid query parameters")

// queryInt reads an integer query param; a missing param reads as 0.
func queryInt(ctx echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError(errInvalidQuery, core.FieldError{Field: name, Error: name + " must be a number"})
	}
	return n, nil
}

// bindPeriod reads the `month` and `year` query params.
func bindPeriod(ctx echo.Context) (payment.Period, error) {
	var (
		p   payment.Period
		err error
	)
	if p.Month, err = queryInt(ctx, "month"); err != nil {
		return payment.Period{}, err
	}
	if p.Year, err = queryInt(ctx, "year"); err != nil {
		return payment.Period{}, err
	}
	return p, nil
}

// queryBool reads an optional boolean query param.
func queryBool(ctx echo.Context, name string) *bool {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}
