package cache

import (
	"database/sql"
	"errors"
	"time"

	memcache "github.com/thrasher-corp/inkback/common/cache"
)

var (
	// ErrCacheMiss is returned by Get when no dataset matches the request
	ErrCacheMiss = errors.New("dataset not cached")
	// ErrNilStore is returned when methods are called on an unopened store
	ErrNilStore = errors.New("cache store is nil")
)

// hotCapacity bounds the in memory layer, a session rarely touches more
// than a handful of datasets
const hotCapacity = 8

// Store persists fetched candle datasets in a local sqlite file so repeat
// runs do not hit the source again. Recently served series are kept in
// memory, a sweep re-requesting its dataset skips the scan entirely
type Store struct {
	db   *sql.DB
	path string
	hot  *memcache.Cache
}

// Entry describes one cached dataset for listing
type Entry struct {
	ID        int64
	Symbol    string
	Schema    string
	Interval  time.Duration
	Start     time.Time
	End       time.Time
	Source    string
	Candles   int
	CreatedAt time.Time
}
