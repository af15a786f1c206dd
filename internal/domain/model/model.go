// Package model contains domain models passed between layers.
package model

// TableName identifies one of the published recommendation tables.
type TableName string

// Known recommendation tables, in tier-priority order.
const (
	TableFinalRanked TableName = "final_ranked"
	TablePersonalALS TableName = "personal_als"
	TableTopPopular  TableName = "top_popular"
)

// AllTables returns the known table names in tier-priority order.
func AllTables() []TableName {
	return []TableName{TableFinalRanked, TablePersonalALS, TableTopPopular}
}

// ParseTableName validates a table name received from an external caller.
func ParseTableName(s string) (TableName, error) {
	switch TableName(s) {
	case TableFinalRanked, TablePersonalALS, TableTopPopular:
		return TableName(s), nil
	}
	return "", ErrUnknownTable
}

// UserIndexed reports whether rows of this table are keyed by user id.
// top_popular is global and has no user index.
func (t TableName) UserIndexed() bool {
	return t == TableFinalRanked || t == TablePersonalALS
}

// Row is a single row of a recommendation table. TrackID is mandatory;
// the remaining columns are optional and nil when the source table does
// not carry them. UserID is meaningful only in user-indexed tables.
type Row struct {
	UserID      int64
	TrackID     int64
	Score       *float64
	Rank        *int64
	ListenCount *int64
}
