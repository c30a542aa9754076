package catalog

import (
	"strconv"
	"strings"
)

// Kind classifies an opaque title identifier.
type Kind int

const (
	KindExternal Kind = iota
	KindCustomMovie
	KindCustomSeries
)

func (k Kind) String() string {
	switch k {
	case KindCustomMovie:
		return "custom_movie"
	case KindCustomSeries:
		return "custom_series"
	default:
		return "external"
	}
}

// Classify decides which store an identifier addresses. The series check
// runs only under a matched custom prefix; an external title whose id
// happens to contain "series" elsewhere must never be rerouted.
func Classify(id string) Kind {
	if strings.HasPrefix(id, "custom") {
		if strings.Contains(id, "series") {
			return KindCustomSeries
		}
		return KindCustomMovie
	}
	return KindExternal
}

// externalID strips the custom sentinel from an identifier and reports
// whether the remainder is a provider-compatible numeric id. Normally it is
// not; this exists for the defensive fall-through on mis-generated ids.
func externalID(id string) (string, bool) {
	trimmed := strings.TrimPrefix(id, "custom")
	trimmed = strings.TrimPrefix(trimmed, "_series")
	trimmed = strings.Trim(trimmed, "_")
	if trimmed == "" {
		return "", false
	}
	if _, err := strconv.Atoi(trimmed); err != nil {
		return "", false
	}
	return trimmed, true
}
