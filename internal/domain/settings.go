package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

type Settings struct {
	ID                    int64
	StoreName             string
	Currency              string
	ShippingCost          decimal.Decimal
	FreeShippingThreshold decimal.NullDecimal
	SMTP                  SMTPSettings
	SEO                   SEOSettings
	UpdatedAt             time.Time
}

type SMTPSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s SMTPSettings) Configured() bool {
	return s.Host != "" && s.Port > 0 && s.From != ""
}

type SEOSettings struct {
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
}

// ShippingFor returns the shipping charged for an order worth amount after discounts.
func (s Settings) ShippingFor(amount decimal.Decimal) decimal.Decimal {
	if s.FreeShippingThreshold.Valid && amount.GreaterThanOrEqual(s.FreeShippingThreshold.Decimal) {
		return decimal.Zero
	}
	return s.ShippingCost
}
