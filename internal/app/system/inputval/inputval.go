// internal/app/system/inputval/inputval.go

// Package inputval validates caller-supplied field values. These checks run
// before anything touches a store, so their job is to reject garbage early
// with a field-level validation error, not to enforce uniqueness or other
// cross-record rules.
package inputval

import "strings"

// IsValidEmail reports whether s is a plausible address: exactly one '@',
// non-empty local and domain parts, no whitespace, and no leading, trailing,
// or doubled dots on either side. Single-label domains are allowed so dev
// and test environments can use addresses like admin@mailserver.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	return dotsOK(local) && dotsOK(domain)
}

func dotsOK(part string) bool {
	return !strings.HasPrefix(part, ".") &&
		!strings.HasSuffix(part, ".") &&
		!strings.Contains(part, "..")
}

func inSet(value string, allowed ...string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// IsValidRole reports whether s names an admin role.
func IsValidRole(s string) bool {
	return inSet(s, "superadmin", "admin", "treasurer", "secretary")
}

// IsValidPaymentCategory reports whether s names a treasury category.
func IsValidPaymentCategory(s string) bool {
	return inSet(s, "dues", "donation", "other")
}

// IsValidProspectStage reports whether s names a recruitment stage.
func IsValidProspectStage(s string) bool {
	return inSet(s, "new", "contacted", "invited", "joined", "declined")
}

// IsValidEventStatus reports whether s names a training/webinar status.
func IsValidEventStatus(s string) bool {
	return inSet(s, "scheduled", "cancelled", "completed")
}

// IsValidCurrency reports whether s looks like an ISO 4217 code: exactly
// three ASCII letters. The treasury accepts any such code; conversion rates
// decide which ones the stats can fold into the reporting currency.
func IsValidCurrency(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
