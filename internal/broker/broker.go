// Package broker defines the capability boundary to a trading venue and
// provides PaperBroker, the in-memory reference implementation. Any real
// venue adapter implements the same four operations.
package broker

import (
	"errors"

	"github.com/ksred/tradepulse/internal/types"
)

var (
	// ErrUnknownOrder is returned when a broker order ID is not known to
	// the broker.
	ErrUnknownOrder = errors.New("unknown broker order id")
	// ErrPlacementFailed is returned when a request cannot be accepted.
	ErrPlacementFailed = errors.New("order placement failed")
)

// Broker abstracts a trading venue.
type Broker interface {
	// PlaceOrder submits an order for execution.
	PlaceOrder(req types.OrderRequest) (types.OrderResponse, error)

	// CancelOrder requests cancellation of an order by its broker ID.
	// Cancelling an order that is already FILLED or CANCELLED returns the
	// existing response unchanged.
	CancelOrder(brokerOrderID string) (types.OrderResponse, error)

	// GetOrder returns the current response for a broker order ID.
	GetOrder(brokerOrderID string) (types.OrderResponse, bool)

	// Positions returns a snapshot of net signed position per symbol.
	// The returned map is a copy; mutating it has no effect on the broker.
	Positions() map[string]float64
}
