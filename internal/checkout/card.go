package checkout

import (
	"regexp"
	"strings"
	"time"

	"github.com/kadapaimran/grocery-storefront/pkg/types"
)

// CardType is the card network detected from the leading digits.
type CardType string

const (
	CardVisa       CardType = "visa"
	CardMastercard CardType = "mastercard"
	CardAmex       CardType = "amex"
	CardDiscover   CardType = "discover"
	CardUnknown    CardType = "unknown"
)

// Form carries the checkout form fields as submitted.
type Form struct {
	CardholderName string               `json:"cardholderName"`
	CardNumber     string               `json:"cardNumber"`
	ExpiryMonth    int                  `json:"expiryMonth"`
	ExpiryYear     int                  `json:"expiryYear"`
	CVV            string               `json:"cvv"`
	Email          string               `json:"email"`
	Billing        types.BillingAddress `json:"billingAddress"`
}

// FieldError names one invalid form field. The Field values follow the form
// field names so clients can focus the offending input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// DetectCardType classifies a card number by its leading digits. The number
// may still contain spaces.
func DetectCardType(number string) CardType {
	n := stripSpaces(number)
	switch {
	case strings.HasPrefix(n, "4"):
		return CardVisa
	case len(n) >= 2 && n[0] == '5' && n[1] >= '1' && n[1] <= '5':
		return CardMastercard
	case strings.HasPrefix(n, "34") || strings.HasPrefix(n, "37"):
		return CardAmex
	case strings.HasPrefix(n, "6011") || strings.HasPrefix(n, "65"):
		return CardDiscover
	default:
		return CardUnknown
	}
}

// ValidateForm checks every field and returns the failures in form-field
// order, so the first entry is the field to focus on a failed submit. An
// empty slice means the form is valid.
func ValidateForm(form Form, now time.Time) []FieldError {
	var errs []FieldError

	fields := []string{
		"cardholderName",
		"cardNumber",
		"expiryMonth",
		"expiryYear",
		"cvv",
		"email",
		"billingAddress.street",
		"billingAddress.city",
		"billingAddress.zipCode",
	}
	for _, field := range fields {
		if fe := ValidateField(form, field, now); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// ValidateField checks a single field, the blur-level counterpart of
// ValidateForm. It returns nil when the field is valid or unknown.
func ValidateField(form Form, field string, now time.Time) *FieldError {
	switch field {
	case "cardholderName":
		if strings.TrimSpace(form.CardholderName) == "" {
			return &FieldError{Field: field, Message: "Cardholder name is required"}
		}
	case "cardNumber":
		number := stripSpaces(form.CardNumber)
		if number == "" {
			return &FieldError{Field: field, Message: "Card number is required"}
		}
		if !digitsOnly.MatchString(number) || len(number) < 13 || len(number) > 19 || !luhnValid(number) {
			return &FieldError{Field: field, Message: "Please enter a valid card number"}
		}
	case "expiryMonth":
		if form.ExpiryMonth < 1 || form.ExpiryMonth > 12 {
			return &FieldError{Field: field, Message: "Month is required"}
		}
		if form.ExpiryYear > 0 && expired(form.ExpiryMonth, form.ExpiryYear, now) {
			return &FieldError{Field: field, Message: "Card has expired"}
		}
	case "expiryYear":
		if form.ExpiryYear <= 0 {
			return &FieldError{Field: field, Message: "Year is required"}
		}
	case "cvv":
		if form.CVV == "" {
			return &FieldError{Field: field, Message: "CVV is required"}
		}
		want := 3
		if DetectCardType(form.CardNumber) == CardAmex {
			want = 4
		}
		if !digitsOnly.MatchString(form.CVV) || len(form.CVV) != want {
			return &FieldError{Field: field, Message: "Please enter a valid CVV"}
		}
	case "email":
		if form.Email == "" {
			return &FieldError{Field: field, Message: "Email is required"}
		}
		if !emailPattern.MatchString(form.Email) {
			return &FieldError{Field: field, Message: "Please enter a valid email"}
		}
	case "billingAddress.street":
		if strings.TrimSpace(form.Billing.Street) == "" {
			return &FieldError{Field: field, Message: "Street address is required"}
		}
	case "billingAddress.city":
		if strings.TrimSpace(form.Billing.City) == "" {
			return &FieldError{Field: field, Message: "City is required"}
		}
	case "billingAddress.zipCode":
		if strings.TrimSpace(form.Billing.Zip) == "" {
			return &FieldError{Field: field, Message: "ZIP code is required"}
		}
	}
	return nil
}

// luhnValid runs the Luhn checksum over a digits-only card number.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// expired reports whether the month/year pair resolves to a date earlier
// than the current month. A card expiring this month is still valid.
func expired(month, year int, now time.Time) bool {
	if year < now.Year() {
		return true
	}
	if year > now.Year() {
		return false
	}
	return time.Month(month) < now.Month()
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
