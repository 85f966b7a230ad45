package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/inkback/data"
	"github.com/thrasher-corp/inkback/log"
)

var (
	// ErrNoHeader is returned when a file does not begin with a header row
	ErrNoHeader = errors.New("csv file has no header row")
	// ErrBadTimestamp is returned when the first column of a row cannot be
	// parsed as either RFC3339 or a unix epoch
	ErrBadTimestamp = errors.New("could not parse timestamp column")
)

// core column names recognised from the header, case-insensitively.
// Everything else lands in Fields or Annotations.
const (
	columnOpen   = "open"
	columnHigh   = "high"
	columnLow    = "low"
	columnClose  = "close"
	columnVolume = "volume"
)

// LoadSeries reads a candle file and returns an ordered series. The first
// column must hold the candle timestamp, remaining columns are mapped by
// header name. Unrecognised numeric columns become candle fields,
// non-numeric ones become annotations
func LoadSeries(file, symbol, schema string, interval time.Duration) (*data.Series, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Errorln(log.Data, errClose)
		}
	}()

	candles, err := ReadCandles(f)
	if err != nil {
		return nil, fmt.Errorf("%w while reading %v", err, file)
	}
	return data.NewSeries(symbol, schema, interval, candles)
}

// ReadCandles parses candle rows from r. Exposed separately from LoadSeries
// so sources can decorate the reader
func ReadCandles(r io.Reader) ([]data.Candle, error) {
	c := csv.NewReader(r)
	header, err := c.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrNoHeader
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w, got %v", ErrNoHeader, header)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var candles []data.Candle
	for {
		row, errCSV := c.Read()
		if errCSV != nil {
			if errCSV == io.EOF {
				break
			}
			return nil, errCSV
		}

		candle, errRow := parseRow(header, row)
		if errRow != nil {
			return nil, fmt.Errorf("%w on row %v", errRow, row)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseRow(header, row []string) (data.Candle, error) {
	candle := data.Candle{}
	ts, err := parseTimestamp(row[0])
	if err != nil {
		return candle, err
	}
	candle.Time = ts

	for i := 1; i < len(row) && i < len(header); i++ {
		cell := strings.TrimSpace(row[i])
		switch header[i] {
		case columnOpen:
			candle.Open, err = decimal.NewFromString(cell)
		case columnHigh:
			candle.High, err = decimal.NewFromString(cell)
		case columnLow:
			candle.Low, err = decimal.NewFromString(cell)
		case columnClose:
			candle.Close, err = decimal.NewFromString(cell)
		case columnVolume:
			candle.Volume, err = decimal.NewFromString(cell)
		default:
			if d, errField := decimal.NewFromString(cell); errField == nil {
				if candle.Fields == nil {
					candle.Fields = make(map[string]decimal.Decimal)
				}
				candle.Fields[header[i]] = d
			} else {
				if candle.Annotations == nil {
					candle.Annotations = make(map[string]string)
				}
				candle.Annotations[header[i]] = row[i]
			}
		}
		if err != nil {
			return candle, fmt.Errorf("could not parse %v column: %v", header[i], err)
		}
	}
	return candle, nil
}

// parseTimestamp accepts RFC3339 or a unix epoch in seconds or milliseconds.
// Epochs past 1e12 are treated as milliseconds, anything earlier would be
// before 1973 in millisecond terms
func parseTimestamp(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if t, err := time.Parse(time.RFC3339, cell); err == nil {
		return t.UTC(), nil
	}
	v, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w, %q is neither RFC3339 nor epoch", ErrBadTimestamp, cell)
	}
	if v > 1e12 {
		return time.UnixMilli(v).UTC(), nil
	}
	return time.Unix(v, 0).UTC(), nil
}
