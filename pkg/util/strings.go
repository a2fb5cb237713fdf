package util

import (
    "strconv"
    "strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
    if s == "" {
        return def
    }
    v, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return v
}

// ParseBoolDefault parses common truthy strings ("1", "true", "yes") case-insensitively.
func ParseBoolDefault(s string, def bool) bool {
    if s == "" {
        return def
    }
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "1", "true", "yes":
        return true
    case "0", "false", "no":
        return false
    }
    return def
}

// NormalizeEmail trims whitespace and lower-cases an address.
func NormalizeEmail(s string) string {
    return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeSymbol strips everything but letters, digits, dot and dash, and upper-cases.
func SanitizeSymbol(s string) string {
    var b strings.Builder
    for _, r := range s {
        switch {
        case r >= 'a' && r <= 'z':
            b.WriteRune(r - 32)
        case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-':
            b.WriteRune(r)
        }
    }
    return b.String()
}
