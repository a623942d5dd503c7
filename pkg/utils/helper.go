package utils

import (
	"strings"

	"github.com/spf13/cast"
)

// ParseInt converts a query value to a positive int, falling back to defaultValue.
func ParseInt(value string, defaultValue int) int {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}

	result, err := cast.ToIntE(strings.TrimSpace(value))
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}

// ParseFloatPtr returns nil for empty or unparsable input.
func ParseFloatPtr(value string) *float64 {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &f
}

// ParseBool accepts 1/0, true/false, yes/no style values.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "on":
		return true
	}
	return cast.ToBool(strings.TrimSpace(value))
}
