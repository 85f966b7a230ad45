package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"

	"github.com/thrasher-corp/inkback/common"
	memcache "github.com/thrasher-corp/inkback/common/cache"
	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/data/source"
	"github.com/thrasher-corp/inkback/log"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS datasets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	schema TEXT NOT NULL,
	interval_ns INTEGER NOT NULL,
	start_ns INTEGER NOT NULL,
	end_ns INTEGER NOT NULL,
	source TEXT NOT NULL,
	created_at_ns INTEGER NOT NULL,
	UNIQUE (symbol, schema, interval_ns, start_ns, end_ns)
);
CREATE TABLE IF NOT EXISTS candles (
	dataset_id INTEGER NOT NULL,
	ts_ns INTEGER NOT NULL,
	open TEXT NOT NULL,
	high TEXT NOT NULL,
	low TEXT NOT NULL,
	close TEXT NOT NULL,
	volume TEXT NOT NULL,
	fields_json TEXT,
	annotations_json TEXT,
	PRIMARY KEY (dataset_id, ts_ns)
);`

// Open opens or creates the sqlite file at path and ensures the schema
// exists. Sqlite only tolerates a single writer so the pool is capped at
// one connection
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(schemaSQL); err != nil {
		if errClose := db.Close(); errClose != nil {
			log.Errorln(log.Data, errClose)
		}
		return nil, fmt.Errorf("could not create cache schema: %w", err)
	}
	return &Store{db: db, path: path, hot: memcache.New(hotCapacity)}, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return ErrNilStore
	}
	return s.db.Close()
}

// Get returns the cached series matching r or ErrCacheMiss
func (s *Store) Get(ctx context.Context, r source.Request) (*data.Series, error) {
	if s == nil || s.db == nil {
		return nil, ErrNilStore
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if hit, ok := s.hot.Get(requestKey(r)).(*data.Series); ok {
		return hit, nil
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM datasets WHERE symbol = ? AND schema = ? AND interval_ns = ? AND start_ns = ? AND end_ns = ?`,
		r.Symbol, r.Schema, int64(r.Interval), timeToNano(r.Start), timeToNano(r.End)).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w for %v %v", ErrCacheMiss, r.Symbol, r.Schema)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ts_ns, open, high, low, close, volume, fields_json, annotations_json
		 FROM candles WHERE dataset_id = ? ORDER BY ts_ns ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Errorln(log.Data, errClose)
		}
	}()

	var candles []data.Candle
	for rows.Next() {
		candle, errScan := scanCandle(rows)
		if errScan != nil {
			return nil, errScan
		}
		candles = append(candles, candle)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	series, err := data.NewSeries(r.Symbol, r.Schema, r.Interval, candles)
	if err != nil {
		return nil, err
	}
	s.hot.Add(requestKey(r), series)
	return series, nil
}

// Put stores a series under the request key, replacing any dataset already
// held for it
func (s *Store) Put(ctx context.Context, r source.Request, series *data.Series, sourceName string) error {
	if s == nil || s.db == nil {
		return ErrNilStore
	}
	if series == nil {
		return data.ErrNilSeries
	}
	if err := r.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("BeginTx %w", err)
	}
	defer func() {
		if err != nil {
			if errRB := tx.Rollback(); errRB != nil {
				log.Errorf(log.Data, "Put tx.Rollback %v", errRB)
			}
		}
	}()

	if err = deleteDataset(ctx, tx, r); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (symbol, schema, interval_ns, start_ns, end_ns, source, created_at_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Symbol, r.Schema, int64(r.Interval), timeToNano(r.Start), timeToNano(r.End),
		sourceName, time.Now().UTC().UnixNano())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO candles (dataset_id, ts_ns, open, high, low, close, volume, fields_json, annotations_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := stmt.Close(); errClose != nil {
			log.Errorln(log.Data, errClose)
		}
	}()

	candles := series.Candles()
	for i := range candles {
		fields, errJSON := marshalColumn(candles[i].Fields)
		if errJSON != nil {
			err = errJSON
			return err
		}
		annotations, errJSON := marshalColumn(candles[i].Annotations)
		if errJSON != nil {
			err = errJSON
			return err
		}
		_, err = stmt.ExecContext(ctx,
			id,
			candles[i].Time.UnixNano(),
			candles[i].Open.String(),
			candles[i].High.String(),
			candles[i].Low.String(),
			candles[i].Close.String(),
			candles[i].Volume.String(),
			fields,
			annotations)
		if err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.hot.Add(requestKey(r), series)
	return nil
}

// Ensure returns the cached series for r, fetching and caching it on a
// miss. A failed cache write is logged rather than returned, fetched data
// is still usable when the disk is not
func (s *Store) Ensure(ctx context.Context, src source.Source, r source.Request) (*data.Series, error) {
	if s == nil || s.db == nil {
		return nil, ErrNilStore
	}
	if src == nil {
		return nil, source.ErrNilSource
	}

	series, err := s.Get(ctx, r)
	if err == nil {
		log.Debugf(log.Data, "cache hit for %v %v", r.Symbol, r.Schema)
		return series, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	series, err = src.Fetch(ctx, r)
	if err != nil {
		return nil, err
	}
	for _, gap := range series.Gaps() {
		log.Warnf(log.Data, "%v %v has no candles between %v and %v",
			r.Symbol, r.Schema,
			gap.Start.Format(common.SimpleTimeFormat),
			gap.End.Format(common.SimpleTimeFormat))
	}
	if err = s.Put(ctx, r, series, src.Name()); err != nil {
		log.Warnf(log.Data, "could not cache %v %v: %v", r.Symbol, r.Schema, err)
	}
	return series, nil
}

// List returns every cached dataset ordered by insertion
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, ErrNilStore
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.symbol, d.schema, d.interval_ns, d.start_ns, d.end_ns, d.source, d.created_at_ns,
		        COUNT(c.ts_ns)
		 FROM datasets d
		 LEFT JOIN candles c ON c.dataset_id = d.id
		 GROUP BY d.id
		 ORDER BY d.id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Errorln(log.Data, errClose)
		}
	}()

	var entries []Entry
	for rows.Next() {
		var (
			e                          Entry
			intervalNs, startNs, endNs int64
			createdNs                  int64
		)
		if err = rows.Scan(&e.ID, &e.Symbol, &e.Schema, &intervalNs, &startNs, &endNs,
			&e.Source, &createdNs, &e.Candles); err != nil {
			return nil, err
		}
		e.Interval = time.Duration(intervalNs)
		e.Start = nanoToTime(startNs)
		e.End = nanoToTime(endNs)
		e.CreatedAt = nanoToTime(createdNs)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Purge removes cached datasets for a symbol, or every dataset when symbol
// is empty. It returns the number of datasets removed
func (s *Store) Purge(ctx context.Context, symbol string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrNilStore
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("BeginTx %w", err)
	}
	defer func() {
		if err != nil {
			if errRB := tx.Rollback(); errRB != nil {
				log.Errorf(log.Data, "Purge tx.Rollback %v", errRB)
			}
		}
	}()

	var res sql.Result
	if symbol == "" {
		if _, err = tx.ExecContext(ctx, `DELETE FROM candles`); err != nil {
			return 0, err
		}
		res, err = tx.ExecContext(ctx, `DELETE FROM datasets`)
	} else {
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM candles WHERE dataset_id IN (SELECT id FROM datasets WHERE symbol = ?)`,
			symbol); err != nil {
			return 0, err
		}
		res, err = tx.ExecContext(ctx, `DELETE FROM datasets WHERE symbol = ?`, symbol)
	}
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	s.hot.Clear()
	return removed, nil
}

func deleteDataset(ctx context.Context, tx *sql.Tx, r source.Request) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM candles WHERE dataset_id IN (
			SELECT id FROM datasets WHERE symbol = ? AND schema = ? AND interval_ns = ? AND start_ns = ? AND end_ns = ?)`,
		r.Symbol, r.Schema, int64(r.Interval), timeToNano(r.Start), timeToNano(r.End))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM datasets WHERE symbol = ? AND schema = ? AND interval_ns = ? AND start_ns = ? AND end_ns = ?`,
		r.Symbol, r.Schema, int64(r.Interval), timeToNano(r.Start), timeToNano(r.End))
	return err
}

func scanCandle(rows *sql.Rows) (data.Candle, error) {
	var (
		candle              data.Candle
		tsNs                int64
		o, h, l, c, v       string
		fields, annotations null.String
	)
	err := rows.Scan(&tsNs, &o, &h, &l, &c, &v, &fields, &annotations)
	if err != nil {
		return candle, err
	}
	candle.Time = time.Unix(0, tsNs).UTC()
	if candle.Open, err = decimal.NewFromString(o); err != nil {
		return candle, err
	}
	if candle.High, err = decimal.NewFromString(h); err != nil {
		return candle, err
	}
	if candle.Low, err = decimal.NewFromString(l); err != nil {
		return candle, err
	}
	if candle.Close, err = decimal.NewFromString(c); err != nil {
		return candle, err
	}
	if candle.Volume, err = decimal.NewFromString(v); err != nil {
		return candle, err
	}
	if fields.Valid {
		if err = json.Unmarshal([]byte(fields.String), &candle.Fields); err != nil {
			return candle, err
		}
	}
	if annotations.Valid {
		if err = json.Unmarshal([]byte(annotations.String), &candle.Annotations); err != nil {
			return candle, err
		}
	}
	return candle, nil
}

// marshalColumn renders a map as a nullable JSON column, empty maps stay
// NULL
func marshalColumn(m interface{}) (null.String, error) {
	switch v := m.(type) {
	case map[string]decimal.Decimal:
		if len(v) == 0 {
			return null.String{}, nil
		}
	case map[string]string:
		if len(v) == 0 {
			return null.String{}, nil
		}
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return null.String{}, err
	}
	return null.StringFrom(string(payload)), nil
}

// requestKey collapses a request into the string the hot layer is keyed
// by, mirroring the dataset unique constraint
func requestKey(r source.Request) string {
	return fmt.Sprintf("%s|%s|%d|%d|%d",
		r.Symbol, r.Schema, int64(r.Interval), timeToNano(r.Start), timeToNano(r.End))
}

func timeToNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func nanoToTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}
