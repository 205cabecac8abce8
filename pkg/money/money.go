package money

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrNegativeAmount   = errors.New("money: amount must be non-negative")
)

// Money хранит сумму в минорных единицах валюты (копейки, центы),
// чтобы избежать ошибок плавающей точки при расчетах
type Money struct {
	Amount   int64
	Currency string
}

// New создает Money с валидацией кода валюты
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Must создает Money и паникует при ошибке валидации; удобно в тестах и фикстурах
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero возвращает нулевую сумму в указанной валюте
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: strings.ToUpper(currency)}
}

// Add складывает две суммы, проверяя совпадение валют
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub вычитает other из m, проверяя совпадение валют
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Multiply умножает сумму на целочисленный множитель
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// PercentOf возвращает percent% от суммы (целочисленное деление, округление вниз)
func (m Money) PercentOf(percent int) Money {
	if percent <= 0 {
		return Money{Amount: 0, Currency: m.Currency}
	}
	return Money{Amount: m.Amount * int64(percent) / 100, Currency: m.Currency}
}

// BasisPointsOf возвращает bp/10000 от суммы (для налоговых ставок)
func (m Money) BasisPointsOf(bp int64) Money {
	if bp <= 0 {
		return Money{Amount: 0, Currency: m.Currency}
	}
	return Money{Amount: m.Amount * bp / 10000, Currency: m.Currency}
}

// IsZero возвращает true, если сумма равна нулю
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsNegative возвращает true, если сумма отрицательная
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// Equal возвращает true при совпадении суммы и валюты
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

// String возвращает строковое представление вида "1000 RUB"
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
