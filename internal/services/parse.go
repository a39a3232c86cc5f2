package services

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice converts a currency string like "$1,234.56" to integer cents.
// The second return is false when the input is empty or not a number;
// callers treat a missing price as a normal outcome, not an error.
func ParsePrice(text string) (int64, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(value * 100)), true
}
