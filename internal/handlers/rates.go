package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/travel-planner/backend/internal/rates"
)

// RatesSource отдает курсы валют.
type RatesSource interface {
	Rates(ctx context.Context, base string) (rates.Table, error)
	Convert(ctx context.Context, amount float64, from, to string, buffer bool) (float64, error)
}

type RatesHandler struct {
	Rates RatesSource
}

// NewRatesHandler создает обработчик курсов валют.
func NewRatesHandler(source RatesSource) *RatesHandler {
	return &RatesHandler{Rates: source}
}

type RatesResponse struct {
	rates.Table
	Currencies []rates.Currency `json:"currencies"`
}

type ConvertResponse struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Result    float64 `json:"result"`
	Formatted string  `json:"formatted"`
	Buffered  bool    `json:"buffered"`
}

// Get возвращает курсы относительно ?base= (по умолчанию USD).
func (h *RatesHandler) Get(c echo.Context) error {
	table, err := h.Rates.Rates(c.Request().Context(), c.QueryParam("base"))
	if err != nil {
		if errors.Is(err, rates.ErrUnsupportedCurrency) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, RatesResponse{Table: table, Currencies: rates.Currencies()})
}

// Convert пересчитывает ?amount= из ?from= в ?to=; ?buffer=true добавляет запас.
func (h *RatesHandler) Convert(c echo.Context) error {
	amount, err := strconv.ParseFloat(strings.TrimSpace(c.QueryParam("amount")), 64)
	if err != nil || amount < 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return badRequest(c, "invalid amount")
	}

	from := strings.ToUpper(strings.TrimSpace(c.QueryParam("from")))
	to := strings.ToUpper(strings.TrimSpace(c.QueryParam("to")))
	if from == "" || to == "" {
		return badRequest(c, "from and to are required")
	}

	buffer := false
	if raw := strings.TrimSpace(c.QueryParam("buffer")); raw != "" {
		buffer, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid buffer flag")
		}
	}

	result, err := h.Rates.Convert(c.Request().Context(), amount, from, to, buffer)
	if err != nil {
		if errors.Is(err, rates.ErrUnsupportedCurrency) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Result:    result,
		Formatted: rates.Format(result, to),
		Buffered:  buffer,
	})
}
