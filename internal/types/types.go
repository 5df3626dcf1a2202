package types

import "time"

// Order sides
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Order types
const (
	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"
)

// Order statuses as reported by a broker
const (
	StatusNew       = "NEW"
	StatusFilled    = "FILLED"
	StatusCancelled = "CANCELLED"
	StatusRejected  = "REJECTED"
	StatusUnknown   = "UNKNOWN"
)

// MarketUpdate is a single price observation for a symbol.
// Timestamps are assumed monotonic per symbol; the pipeline does not enforce it.
type MarketUpdate struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Signal is an externally produced trading signal carried on the signals topic.
type Signal struct {
	SignalID  string            `json:"signal_id"`
	Symbol    string            `json:"symbol"`
	Timestamp time.Time         `json:"timestamp"`
	Kind      string            `json:"kind"`
	Strength  float64           `json:"strength"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// OrderIntent is a desired trade produced by the decision engine, prior to
// broker-specific normalization. The ID is generated once and never changes.
// A zero Price means MARKET.
type OrderIntent struct {
	IntentID  string            `json:"intent_id"`
	Symbol    string            `json:"symbol"`
	Quantity  float64           `json:"quantity"`
	Side      string            `json:"side"`
	OrderType string            `json:"order_type"`
	Price     float64           `json:"price,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// OrderRequest is the normalized request handed to a Broker.
type OrderRequest struct {
	ClientOrderID string            `json:"client_order_id"`
	Symbol        string            `json:"symbol"`
	Quantity      float64           `json:"quantity"`
	Side          string            `json:"side"`
	OrderType     string            `json:"order_type"`
	Price         float64           `json:"price,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// OrderResponse is a broker's answer to a request. FilledQuantity never
// exceeds the requested quantity. Reason is set for REJECTED responses.
type OrderResponse struct {
	ClientOrderID  string    `json:"client_order_id"`
	BrokerOrderID  string    `json:"broker_order_id,omitempty"`
	Status         string    `json:"status"`
	FilledQuantity float64   `json:"filled_quantity"`
	AvgPrice       float64   `json:"avg_price,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Reason         string    `json:"reason,omitempty"`
}

// TradeFill is a realized execution published on the fills topic.
type TradeFill struct {
	OrderID     string            `json:"order_id"`
	ExecutedQty float64           `json:"executed_qty"`
	AvgPrice    float64           `json:"avg_price"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
