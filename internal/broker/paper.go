package broker

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ksred/tradepulse/internal/types"
)

// FillPriceFunc supplies a fill price for market orders that carry no price.
type FillPriceFunc func(symbol string) (float64, bool)

// PaperBroker is a simulated venue that fills every order immediately and in
// full. The order table and position map are its only mutable state; every
// mutating access happens under a single per-instance mutex so placements and
// cancellations never interleave partially.
type PaperBroker struct {
	mu        sync.Mutex
	orders    map[string]types.OrderResponse
	positions map[string]float64
	fillPrice FillPriceFunc
}

// PaperOption configures a PaperBroker.
type PaperOption func(*PaperBroker)

// WithFillPrice installs a price source used for market orders without an
// explicit price. Without one, such orders fill at 0.
func WithFillPrice(fn FillPriceFunc) PaperOption {
	return func(b *PaperBroker) { b.fillPrice = fn }
}

// NewPaperBroker creates an empty paper broker.
func NewPaperBroker(opts ...PaperOption) *PaperBroker {
	b := &PaperBroker{
		orders:    make(map[string]types.OrderResponse),
		positions: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PlaceOrder fills the full requested quantity at the request price (or the
// injected fill-price source for market orders). ID generation, the order
// record insert and the position update are atomic relative to other calls
// on this instance.
func (b *PaperBroker) PlaceOrder(req types.OrderRequest) (types.OrderResponse, error) {
	logger := log.With().
		Str("component", "paper_broker").
		Str("client_order_id", req.ClientOrderID).
		Str("symbol", req.Symbol).
		Str("side", req.Side).
		Float64("quantity", req.Quantity).
		Logger()

	if req.Quantity <= 0 {
		logger.Warn().Msg("rejecting order with non-positive quantity")
		return types.OrderResponse{}, fmt.Errorf("%w: quantity must be > 0, got %v", ErrPlacementFailed, req.Quantity)
	}
	if req.Symbol == "" {
		logger.Warn().Msg("rejecting order without symbol")
		return types.OrderResponse{}, fmt.Errorf("%w: symbol is required", ErrPlacementFailed)
	}
	if req.Side != types.SideBuy && req.Side != types.SideSell {
		logger.Warn().Str("side", req.Side).Msg("rejecting order with invalid side")
		return types.OrderResponse{}, fmt.Errorf("%w: invalid side %q", ErrPlacementFailed, req.Side)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	brokerID := fmt.Sprintf("paper-%s", uuid.New().String())
	price := req.Price
	if price == 0 && b.fillPrice != nil {
		if mark, ok := b.fillPrice(req.Symbol); ok {
			price = mark
		}
	}

	resp := types.OrderResponse{
		ClientOrderID:  req.ClientOrderID,
		BrokerOrderID:  brokerID,
		Status:         types.StatusFilled,
		FilledQuantity: req.Quantity,
		AvgPrice:       price,
		Timestamp:      time.Now().UTC(),
	}
	b.orders[brokerID] = resp

	delta := req.Quantity
	if req.Side == types.SideSell {
		delta = -req.Quantity
	}
	b.positions[req.Symbol] += delta

	logger.Info().
		Str("broker_order_id", brokerID).
		Float64("avg_price", price).
		Float64("position", b.positions[req.Symbol]).
		Msg("order filled")

	return resp, nil
}

// CancelOrder transitions an open order to CANCELLED. Orders that are
// already FILLED or CANCELLED are returned unchanged.
func (b *PaperBroker) CancelOrder(brokerOrderID string) (types.OrderResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp, ok := b.orders[brokerOrderID]
	if !ok {
		return types.OrderResponse{}, fmt.Errorf("%w: %s", ErrUnknownOrder, brokerOrderID)
	}
	if resp.Status == types.StatusFilled || resp.Status == types.StatusCancelled {
		return resp, nil
	}

	resp.Status = types.StatusCancelled
	resp.Timestamp = time.Now().UTC()
	b.orders[brokerOrderID] = resp

	log.Info().
		Str("component", "paper_broker").
		Str("broker_order_id", brokerOrderID).
		Msg("order cancelled")

	return resp, nil
}

// GetOrder returns a snapshot of the order's current response.
func (b *PaperBroker) GetOrder(brokerOrderID string) (types.OrderResponse, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	resp, ok := b.orders[brokerOrderID]
	return resp, ok
}

// Positions returns a copy of the position map.
func (b *PaperBroker) Positions() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]float64, len(b.positions))
	for symbol, qty := range b.positions {
		out[symbol] = qty
	}
	return out
}
