// Package executor consumes order intents from the bus, forwards them to a
// broker, and publishes the resulting fills and failures.
package executor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ksred/tradepulse/internal/broker"
	"github.com/ksred/tradepulse/internal/bus"
	"github.com/ksred/tradepulse/internal/journal"
	"github.com/ksred/tradepulse/internal/types"
)

// Executor is the order-execution stage. Broker failures are converted to
// rejected responses on the fills topic rather than raised, so the loop
// never dies from a single bad order.
type Executor struct {
	bus     *bus.EventBus
	broker  broker.Broker
	journal *journal.Database // optional
}

// NewExecutor creates an executor. The journal may be nil, in which case
// nothing is persisted.
func NewExecutor(b *bus.EventBus, brk broker.Broker, j *journal.Database) *Executor {
	return &Executor{
		bus:     b,
		broker:  brk,
		journal: j,
	}
}

// Run consumes the orders topic until the context is done. The stop signal
// is observed at the queue-wait boundary; an in-flight broker call always
// completes first.
func (e *Executor) Run(ctx context.Context) {
	logger := log.With().Str("component", "order_executor").Logger()
	logger.Info().Msg("starting order executor")

	topic := e.bus.Topic(bus.TopicOrders)
	for {
		item, err := topic.Receive(ctx)
		if err != nil {
			logger.Info().Msg("shutting down order executor")
			return
		}

		intent, ok := item.(types.OrderIntent)
		if !ok {
			// Malformed item: fatal to this item only, never the loop.
			logger.Error().Interface("item", item).Msg("dropping non-intent item from orders topic")
			continue
		}
		e.execute(intent)
	}
}

func (e *Executor) execute(intent types.OrderIntent) {
	logger := log.With().
		Str("component", "order_executor").
		Str("order_id", intent.IntentID).
		Str("symbol", intent.Symbol).
		Str("side", intent.Side).
		Float64("quantity", intent.Quantity).
		Logger()

	if e.journal != nil {
		if err := e.journal.RecordOrder(intent); err != nil {
			logger.Error().Err(err).Msg("failed to journal order")
		}
	}

	req := types.OrderRequest{
		ClientOrderID: intent.IntentID,
		Symbol:        intent.Symbol,
		Quantity:      intent.Quantity,
		Side:          intent.Side,
		OrderType:     intent.OrderType,
		Price:         intent.Price,
		Metadata:      intent.Metadata,
	}

	resp, err := e.broker.PlaceOrder(req)
	if err != nil {
		rejected := types.OrderResponse{
			ClientOrderID: intent.IntentID,
			Status:        types.StatusRejected,
			Timestamp:     time.Now().UTC(),
			Reason:        err.Error(),
		}
		logger.Warn().Err(err).Msg("order placement failed")
		e.bus.Publish(bus.TopicFills, rejected)

		if e.journal != nil {
			if err := e.journal.RecordRejection(rejected); err != nil {
				logger.Error().Err(err).Msg("failed to journal rejection")
			}
			if err := e.journal.UpdateOrderStatus(intent.IntentID, types.StatusRejected); err != nil {
				logger.Error().Err(err).Msg("failed to update order status")
			}
		}
		return
	}

	fill := types.TradeFill{
		OrderID:     intent.IntentID,
		ExecutedQty: resp.FilledQuantity,
		AvgPrice:    resp.AvgPrice,
		Timestamp:   resp.Timestamp,
		Metadata:    intent.Metadata,
	}
	e.bus.Publish(bus.TopicFills, fill)

	logger.Info().
		Str("broker_order_id", resp.BrokerOrderID).
		Float64("avg_price", resp.AvgPrice).
		Float64("executed_qty", resp.FilledQuantity).
		Msg("order executed")

	if e.journal != nil {
		if err := e.journal.RecordFill(fill, resp.BrokerOrderID); err != nil {
			logger.Error().Err(err).Msg("failed to journal fill")
		}
		if err := e.journal.UpdateOrderStatus(intent.IntentID, resp.Status); err != nil {
			logger.Error().Err(err).Msg("failed to update order status")
		}
	}
}
