package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_CanFulfil(t *testing.T) {
	p := Product{ID: 1, Name: "Red Roses Bouquet", Price: dec("49.90"), Stock: 5, IsActive: true}

	assert.True(t, p.CanFulfil(5))
	assert.False(t, p.CanFulfil(6))
	assert.False(t, p.CanFulfil(0))

	p.IsActive = false
	assert.False(t, p.CanFulfil(1))
}

func TestProduct_InStock(t *testing.T) {
	assert.True(t, Product{Stock: 1}.InStock())
	assert.False(t, Product{Stock: 0}.InStock())
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Ramo de Rosas Rojas":     "ramo-de-rosas-rojas",
		"Orquídea Phalaenopsis":   "orquidea-phalaenopsis",
		"  Tulips & Peonies!!  ":  "tulips-peonies",
		"Girasoles x12 (grandes)": "girasoles-x12-grandes",
		"Año Nuevo":               "ano-nuevo",
		"***":                     "",
	}

	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSettings_ShippingFor(t *testing.T) {
	s := Settings{ShippingCost: dec("7.50")}
	assert.Equal(t, "7.50", s.ShippingFor(dec("500")).StringFixed(2))

	s.FreeShippingThreshold = nullDec("60")
	assert.True(t, s.ShippingFor(dec("60")).IsZero())
	assert.Equal(t, "7.50", s.ShippingFor(dec("59.99")).StringFixed(2))
}

func TestSMTPSettings_Configured(t *testing.T) {
	assert.False(t, SMTPSettings{}.Configured())
	assert.True(t, SMTPSettings{Host: "smtp.example.com", Port: 587, From: "shop@example.com"}.Configured())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("ADMIN")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)
	assert.True(t, User{Role: r}.IsAdmin())

	_, ok = ParseRole("root")
	assert.False(t, ok)
}
