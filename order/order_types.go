package order

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Side designates whether an order adds to or reduces a position
type Side string

// Sides an order can take
const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Type designates how an order prices its fill
type Type string

// Types an order can take. Market orders fill at the next candle's open,
// limit orders fill at the limit price when the next candle trades
// through it
const (
	Market Type = "MARKET"
	Limit  Type = "LIMIT"
)

// Status tracks an order through its lifecycle. Orders are created
// Requested, become Pending once the engine accepts them and finish
// Filled, Expired or Rejected
type Status string

// Statuses an order can take
const (
	Requested Status = "REQUESTED"
	Pending   Status = "PENDING"
	Filled    Status = "FILLED"
	Expired   Status = "EXPIRED"
	Rejected  Status = "REJECTED"
)

var (
	// ErrSubmissionIsNil is returned when a nil order is validated
	ErrSubmissionIsNil = errors.New("order submission is nil")
	// ErrSideIsInvalid is returned when an order side is not buy or sell
	ErrSideIsInvalid = errors.New("order side is invalid")
	// ErrTypeIsInvalid is returned when an order type is not market or limit
	ErrTypeIsInvalid = errors.New("order type is invalid")
	// ErrAmountIsInvalid is returned when an order amount is not positive
	ErrAmountIsInvalid = errors.New("order amount is invalid")
	// ErrPriceMustBeSetIfLimitOrder is returned when a limit order carries
	// no positive limit price
	ErrPriceMustBeSetIfLimitOrder = errors.New("limit orders require a positive price")
)

// Order is a request to trade created by a strategy. Price carries the
// strategy's reference price, for limit orders it is the limit price.
// SubmittedAt and SubmittedIndex are stamped by the engine on acceptance
type Order struct {
	ID             uuid.UUID
	Side           Side
	Type           Type
	Price          decimal.Decimal
	Amount         decimal.Decimal
	Status         Status
	Reason         string
	SubmittedAt    time.Time
	SubmittedIndex int
}
