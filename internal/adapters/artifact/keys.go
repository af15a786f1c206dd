// Package artifact maps published recommendation artifacts to in-memory
// tables: object key layout, parquet decoding, and the load pipeline.
package artifact

import (
	"path"

	"github.com/okian/encore/internal/domain/model"
)

// DefaultPrefix is where the offline pipeline publishes its artifacts.
const DefaultPrefix = "recsys/recommendations"

// Object filenames under the prefix. final_ranked keeps the historical
// filename used by the publishing pipeline.
var objectNames = map[model.TableName]string{
	model.TableFinalRanked: "recommendations.parquet",
	model.TablePersonalALS: "personal_als.parquet",
	model.TableTopPopular:  "top_popular.parquet",
}

// Keys resolves table names to object store keys.
type Keys struct {
	prefix string
}

// NewKeys creates a key layout rooted at prefix. An empty prefix falls
// back to DefaultPrefix.
func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{prefix: prefix}
}

// Object returns the object key holding the named table.
func (k Keys) Object(table model.TableName) string {
	return path.Join(k.prefix, objectNames[table])
}
