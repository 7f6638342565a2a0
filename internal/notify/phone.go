package notify

import "strings"

// NormalizePhone converts a stored phone number to E.164. A bare 10 digit US
// number gains a +1 prefix, an 11 digit number with a leading 1 gains a +,
// and an already normalized number passes through. Anything else is
// unresolvable and reported via the second return.
func NormalizePhone(raw string) (string, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return "", false
	}

	if strings.HasPrefix(cleaned, "+") {
		digits := cleaned[1:]
		if len(digits) < 8 || len(digits) > 15 || !allDigits(digits) {
			return "", false
		}
		return cleaned, true
	}

	if !allDigits(cleaned) {
		return "", false
	}

	switch {
	case len(cleaned) == 10:
		return "+1" + cleaned, true
	case len(cleaned) == 11 && cleaned[0] == '1':
		return "+" + cleaned, true
	default:
		return "", false
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
