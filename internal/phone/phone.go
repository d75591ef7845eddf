package phone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const countryCode = "55"

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizeStrict returns the number as 55 + area code + local number, rejecting
// area codes outside 11..99. Used for billing notices.
func NormalizeStrict(raw string) (string, error) {
	return normalize(raw, true)
}

// NormalizeLenient is NormalizeStrict without the area code check.
func NormalizeLenient(raw string) (string, error) {
	return normalize(raw, false)
}

func normalize(raw string, checkAreaCode bool) (string, error) {
	digits := onlyDigits(raw)

	if strings.HasPrefix(digits, countryCode) && len(digits) > 11 {
		digits = digits[len(countryCode):]
	}
	if len(digits) > 11 {
		digits = digits[len(digits)-11:]
	}
	if len(digits) != 10 && len(digits) != 11 {
		return "", fmt.Errorf("%w: %q has %d digits", ErrInvalidPhone, raw, len(digits))
	}

	if checkAreaCode {
		ddd, _ := strconv.Atoi(digits[:2])
		if ddd < 11 || ddd > 99 {
			return "", fmt.Errorf("%w: %q has area code %s", ErrInvalidPhone, raw, digits[:2])
		}
	}

	return countryCode + digits, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
