package auth

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// DefaultTokenExpiry applies when TOKEN_EXPIRY cannot be parsed.
const DefaultTokenExpiry = time.Hour

var expiryPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

var expiryUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseExpiry converts a token lifetime such as "3600", "15m" or "7d".
// Bare digits are seconds. Anything else, including lifetimes too long for a
// time.Duration, yields DefaultTokenExpiry.
func ParseExpiry(value string) time.Duration {
	if n, err := strconv.ParseUint(value, 10, 32); err == nil {
		return time.Duration(n) * time.Second
	}

	m := expiryPattern.FindStringSubmatch(value)
	if m == nil {
		return DefaultTokenExpiry
	}

	amount, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return DefaultTokenExpiry
	}
	unit := expiryUnits[m[2]]
	if amount > uint64(math.MaxInt64/int64(unit)) {
		return DefaultTokenExpiry
	}
	return time.Duration(amount) * unit
}
