package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected       = errors.New("stream not connected")
	ErrAlreadyConnecting  = errors.New("connect already in progress")
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
	ErrNoSymbols          = errors.New("subscription requires at least one symbol")
	ErrUnknownDataType    = errors.New("unknown data type")
	ErrSubscriptionGone   = errors.New("subscription not found")
	ErrConfirmTimeout     = errors.New("subscription confirmation timed out")
)

// DataSourceError identifies a failed upstream fetch by source and symbol.
// Signal generators surface these instead of fabricating substitute data.
type DataSourceError struct {
	Source string
	Symbol string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s data for %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// NewDataSourceError wraps err with the failing source and symbol.
func NewDataSourceError(source, symbol string, err error) *DataSourceError {
	return &DataSourceError{Source: source, Symbol: symbol, Err: err}
}
