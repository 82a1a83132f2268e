package validation

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Username: letters, digits, dot, dash, underscore
	UsernamePattern = `^[a-zA-Z0-9._\-]{3,32}$`

	// Phone: optional leading +, then 5-20 digits, spaces or dashes
	PhonePattern = `^\+?[0-9][0-9 \-]{4,19}$`

	// Password min length
	PasswordMinLength = 8

	// Password max length in bytes; bcrypt rejects anything longer
	PasswordMaxLength = 72
)

// ErrNotInteger is returned by ClampNumber for fractional or malformed input
var ErrNotInteger = errors.New("not an integer")

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Username *regexp.Regexp
	Phone    *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
	Phone:    regexp.MustCompile(PhonePattern),
}

// RegisterCustomRules adds the "username" and "phone" tags to v so request DTOs can
// use them in binding tags.
func RegisterCustomRules(v *validator.Validate) error {
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Username.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Phone.MatchString(fl.Field().String())
	})
}

// IsValidPassword reports whether password satisfies the minimum length rule
func IsValidPassword(password string) bool {
	return len(password) >= PasswordMinLength
}

// IsPasswordTooLong reports whether password exceeds what bcrypt can hash
func IsPasswordTooLong(password string) bool {
	return len(password) > PasswordMaxLength
}

// ClampInt forces value into the inclusive range [min, max]
func ClampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampNumber forces an integral JSON number of any magnitude into [min, max].
// Values beyond the int range saturate instead of failing to decode.
func ClampNumber(n json.Number, min, max int) (int, error) {
	f, ok := new(big.Float).SetPrec(128).SetString(n.String())
	if !ok || !f.IsInt() {
		return 0, ErrNotInteger
	}
	if f.Cmp(new(big.Float).SetInt64(math.MinInt)) < 0 {
		return min, nil
	}
	if f.Cmp(new(big.Float).SetInt64(math.MaxInt)) > 0 {
		return max, nil
	}
	v, _ := f.Int64()
	return ClampInt(int(v), min, max), nil
}
