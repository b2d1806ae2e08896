package inputval_test

import (
	"testing"

	"github.com/dalemusser/memberhub/internal/app/system/inputval"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"ada@example.com",
		"ada.lovelace@mail.example.org",
		"a@b",
		"admin@mailserver",
		" padded@example.com ",
		"x+tag@example.com",
	}
	for _, s := range valid {
		if !inputval.IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"ada@",
		"ada@@example.com",
		"ada lovelace@example.com",
		".ada@example.com",
		"ada.@example.com",
		"ada..lovelace@example.com",
		"ada@.example.com",
		"ada@example.com.",
		"ada@exa..mple.com",
		"<ada@example.com>",
	}
	for _, s := range invalid {
		if inputval.IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = true, want false", s)
		}
	}
}

func TestEnumChecks(t *testing.T) {
	if !inputval.IsValidRole("treasurer") || !inputval.IsValidRole(" Superadmin ") {
		t.Error("known roles rejected")
	}
	if inputval.IsValidRole("root") {
		t.Error("unknown role accepted")
	}

	if !inputval.IsValidPaymentCategory("dues") || inputval.IsValidPaymentCategory("fine") {
		t.Error("payment category check wrong")
	}

	if !inputval.IsValidProspectStage("contacted") || inputval.IsValidProspectStage("won") {
		t.Error("prospect stage check wrong")
	}

	if !inputval.IsValidEventStatus("cancelled") || inputval.IsValidEventStatus("draft") {
		t.Error("event status check wrong")
	}
}

func TestIsValidCurrency(t *testing.T) {
	for _, s := range []string{"EUR", "usd", "Gbp"} {
		if !inputval.IsValidCurrency(s) {
			t.Errorf("IsValidCurrency(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "EU", "EURO", "E1R", "€UR"} {
		if inputval.IsValidCurrency(s) {
			t.Errorf("IsValidCurrency(%q) = true, want false", s)
		}
	}
}
