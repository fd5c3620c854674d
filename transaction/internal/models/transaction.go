// Package models defines the transaction service domain types.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the supported payment instruments.
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// Valid reports whether the payment method is one of the supported values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodTransfer:
		return true
	default:
		return false
	}
}

// Transaction is an accepted payment transaction.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	MerchantID    string          `json:"merchantId"`
	Country       string          `json:"country"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}
