package domain

import (
	"strings"
)

// ParseDraftFlag reads the draft header in any legacy encoding.
// true, 1 and the strings "true", "yes", "1" (any case) mean draft.
func ParseDraftFlag(v any) bool {
	switch tv := v.(type) {
	case bool:
		return tv
	case int:
		return tv == 1
	case int64:
		return tv == 1
	case uint64:
		return tv == 1
	case float64:
		return tv == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(tv)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}
