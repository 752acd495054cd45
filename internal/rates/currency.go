package rates

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrUnsupportedCurrency возвращается для валют вне списка поддерживаемых.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "LKR", Symbol: "Rs", Name: "Sri Lankan Rupee"},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
}

// Currencies возвращает поддерживаемые валюты.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// Lookup находит валюту по коду без учета регистра.
func Lookup(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, currency := range currencies {
		if currency.Code == code {
			return currency, true
		}
	}
	return Currency{}, false
}

// Supported сообщает, поддерживается ли валюта.
func Supported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// Format печатает сумму с символом валюты; у JPY нет дробной части.
func Format(amount float64, code string) string {
	decimals := 2
	if strings.EqualFold(code, "JPY") {
		decimals = 0
	}

	symbol := strings.ToUpper(code)
	if currency, ok := Lookup(code); ok {
		symbol = currency.Symbol
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + symbol + groupThousands(strconv.FormatFloat(amount, 'f', decimals, 64))
}

// FriendlyPrice округляет сумму до удобного значения для валюты.
func FriendlyPrice(amount float64, code string) float64 {
	step := 5.0
	switch strings.ToUpper(code) {
	case "LKR", "JPY":
		step = 100
	case "INR":
		step = 50
	}
	return math.Round(amount/step) * step
}

func groupThousands(number string) string {
	integer, fraction, hasFraction := strings.Cut(number, ".")
	if len(integer) <= 3 {
		return number
	}

	var b strings.Builder
	lead := len(integer) % 3
	if lead > 0 {
		b.WriteString(integer[:lead])
	}
	for i := lead; i < len(integer); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(integer[i : i+3])
	}
	if hasFraction {
		b.WriteString("." + fraction)
	}
	return b.String()
}
