package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Identifier prefixes for locally generated documents. Consumers classify
// ids by these before deciding which collection to query, so they must not
// change.
const (
	CustomMoviePrefix  = "custom_"
	CustomSeriesPrefix = "custom_series_"
)

// newDocumentID generates a collision-resistant identifier of the form
// <prefix><unix-ms>_<random>.
func newDocumentID(prefix string) string {
	return fmt.Sprintf("%s%d_%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}
