// Package util provides normalization helpers for user-supplied item and
// location fields.
package util

import "strings"

// NormalizeCategory ensures category names are always lowercase and trimmed.
// Use this function whenever accepting categories from external sources.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// NormalizeDistrict trims and title-cases a district name so "kathmandu",
// "KATHMANDU" and " Kathmandu " all store the same value.
func NormalizeDistrict(district string) string {
	district = strings.TrimSpace(district)
	if district == "" {
		return ""
	}

	words := strings.Fields(strings.ToLower(district))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NormalizePhone converts Nepali phone numbers to canonical +977 form.
// Already-international numbers are passed through with spacing stripped.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	hasPlus := false
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' && digits.Len() == 0:
			hasPlus = true
		}
	}

	number := digits.String()
	if number == "" {
		return ""
	}

	switch {
	case hasPlus:
		return "+" + number
	case strings.HasPrefix(number, "977"):
		return "+" + number
	case strings.HasPrefix(number, "0"):
		return "+977" + number[1:]
	default:
		return "+977" + number
	}
}

// Contains checks if a string slice contains an item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
