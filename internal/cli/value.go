package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// parseAssignment splits "name=value".
func parseAssignment(assignment string) (string, string, error) {
	name, value, found := strings.Cut(assignment, "=")
	if !found || name == "" {
		return "", "", fmt.Errorf("expected name=value but got %q", assignment)
	}

	return name, value, nil
}

// parseValue interprets a command line value: null, true, false, integers and floats are typed,
// a double-quoted value is an explicit string and everything else is a plain string.
func parseValue(raw string) any {
	switch raw {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}

	if unquoted, err := strconv.Unquote(raw); err == nil && strings.HasPrefix(raw, `"`) {
		return unquoted
	}

	return raw
}
