package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"bloom/internal/domain"
)

// MaskedSecret stands in for stored secrets in admin responses.
const MaskedSecret = "********"

type SEODTO struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	MetaKeywords    string `json:"metaKeywords"`
}

type SMTPDTO struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// PublicSettingsDTO is what the storefront may see.
type PublicSettingsDTO struct {
	StoreName             string `json:"storeName"`
	Currency              string `json:"currency"`
	ShippingCost          Money  `json:"shippingCost"`
	FreeShippingThreshold *Money `json:"freeShippingThreshold"`
	SEO                   SEODTO `json:"seo"`
}

type AdminSettingsDTO struct {
	PublicSettingsDTO
	SMTP      SMTPDTO   `json:"smtp"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SettingsRequest struct {
	StoreName             string              `json:"storeName"`
	Currency              string              `json:"currency"`
	ShippingCost          decimal.Decimal     `json:"shippingCost"`
	FreeShippingThreshold decimal.NullDecimal `json:"freeShippingThreshold"`
	SMTP                  SMTPDTO             `json:"smtp"`
	SEO                   SEODTO              `json:"seo"`
}

func (r SettingsRequest) ToDomain() domain.Settings {
	return domain.Settings{
		StoreName:             r.StoreName,
		Currency:              r.Currency,
		ShippingCost:          r.ShippingCost,
		FreeShippingThreshold: r.FreeShippingThreshold,
		SMTP: domain.SMTPSettings{
			Host:     r.SMTP.Host,
			Port:     r.SMTP.Port,
			User:     r.SMTP.User,
			Password: r.SMTP.Password,
			From:     r.SMTP.From,
		},
		SEO: domain.SEOSettings{
			MetaTitle:       r.SEO.MetaTitle,
			MetaDescription: r.SEO.MetaDescription,
			MetaKeywords:    r.SEO.MetaKeywords,
		},
	}
}

func FromSettingsPublic(s domain.Settings) PublicSettingsDTO {
	return PublicSettingsDTO{
		StoreName:             s.StoreName,
		Currency:              s.Currency,
		ShippingCost:          NewMoney(s.ShippingCost),
		FreeShippingThreshold: NewNullMoney(s.FreeShippingThreshold),
		SEO: SEODTO{
			MetaTitle:       s.SEO.MetaTitle,
			MetaDescription: s.SEO.MetaDescription,
			MetaKeywords:    s.SEO.MetaKeywords,
		},
	}
}

// FromSettingsAdmin never echoes the SMTP password back.
func FromSettingsAdmin(s domain.Settings) AdminSettingsDTO {
	password := ""
	if s.SMTP.Password != "" {
		password = MaskedSecret
	}
	return AdminSettingsDTO{
		PublicSettingsDTO: FromSettingsPublic(s),
		SMTP: SMTPDTO{
			Host:     s.SMTP.Host,
			Port:     s.SMTP.Port,
			User:     s.SMTP.User,
			Password: password,
			From:     s.SMTP.From,
		},
		UpdatedAt: s.UpdatedAt,
	}
}
