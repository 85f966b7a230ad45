package order

import (
	"strings"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// New creates a Requested order ready for submission to the engine
func New(side Side, orderType Type, price, amount decimal.Decimal, reason string) (*Order, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	o := &Order{
		ID:     id,
		Side:   side,
		Type:   orderType,
		Price:  price,
		Amount: amount,
		Status: Requested,
		Reason: reason,
	}
	if err = o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the supplied order and returns whether or not it's valid
func (o *Order) Validate() error {
	if o == nil {
		return ErrSubmissionIsNil
	}
	if o.Side != Buy && o.Side != Sell {
		return ErrSideIsInvalid
	}
	if o.Type != Market && o.Type != Limit {
		return ErrTypeIsInvalid
	}
	if !o.Amount.IsPositive() {
		return ErrAmountIsInvalid
	}
	if o.Type == Limit && !o.Price.IsPositive() {
		return ErrPriceMustBeSetIfLimitOrder
	}
	return nil
}

// IsBuy returns whether the order adds to a position
func (o *Order) IsBuy() bool {
	return o.Side == Buy
}

// String implements the stringer interface
func (s Side) String() string {
	return string(s)
}

// Lower returns the side lower case string
func (s Side) Lower() string {
	return strings.ToLower(string(s))
}

// String implements the stringer interface
func (t Type) String() string {
	return string(t)
}

// Lower returns the type lower case string
func (t Type) Lower() string {
	return strings.ToLower(string(t))
}

// String implements the stringer interface
func (s Status) String() string {
	return string(s)
}
