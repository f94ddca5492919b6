package internal

import "github.com/ValentinKolb/rbKV/lib/db"

// QueryType defines the possible queries for the state machine.
type QueryType uint8

const (
	QueryTGet       QueryType = iota // Retrieve an entry by key.
	QueryTHas                        // Check if a key was ever inserted.
	QueryTGetDBInfo                  // Retrieve metadata about the database underlying the machine.
	QueryTRange                      // List live entries in [Key, End) in key order.
	QueryTCount                      // Count live entries in [Key, End).
	QueryTSeek                       // Find the first live entry with a key >= Key.
)

func (q QueryType) String() string {
	switch q {
	case QueryTGet:
		return "Get"
	case QueryTHas:
		return "Has"
	case QueryTGetDBInfo:
		return "GetDBInfo"
	case QueryTRange:
		return "Range"
	case QueryTCount:
		return "Count"
	case QueryTSeek:
		return "Seek"
	default:
		return "Unknown"
	}
}

// ToDBFeature returns the db.Feature a query needs. GetDBInfo needs none.
func (q QueryType) ToDBFeature() db.Feature {
	switch q {
	case QueryTGet:
		return db.FeatureGet
	case QueryTHas:
		return db.FeatureHas
	case QueryTRange:
		return db.FeatureRange
	case QueryTCount:
		return db.FeatureCount
	case QueryTSeek:
		return db.FeatureSeek
	default:
		return 0
	}
}

// Query defines the structure for lookup requests (read-only) sent via SyncRead or ReadStale
type Query struct {
	Type    QueryType // The type of Query to perform.
	Key     string    // The key for the Query, or the window start (empty for some queries).
	End     string    // The exclusive window end for Range and Count, empty means unbounded.
	Limit   int       // Maximum number of entries returned by Range, <= 0 means no limit.
	Reverse bool      // Range returns descending keys if set.
}

// QueryResult is the result of a QueryTGet or QueryTSeek operation.
// All other query results are primitive types or predefined structs (bool, uint64, []db.KVPair, db.DatabaseInfo).
type QueryResult struct {
	Ok    bool
	Key   string
	Value []byte
}
