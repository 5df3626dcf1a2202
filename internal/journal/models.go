package journal

import (
	"time"

	"gorm.io/gorm"
)

// OrderRecord is the persisted form of an order intent handed to the broker.
type OrderRecord struct {
	gorm.Model `json:"-"`
	OrderID    string    `gorm:"uniqueIndex" json:"order_id"`
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`       // BUY or SELL
	OrderType  string    `json:"order_type"` // MARKET or LIMIT
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Status     string    `json:"status"` // NEW, FILLED, CANCELLED, REJECTED
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FillRecord is the persisted form of an execution result, including
// rejected placements so no broker outcome is lost.
type FillRecord struct {
	gorm.Model    `json:"-"`
	FillID        string    `gorm:"uniqueIndex" json:"fill_id"`
	OrderID       string    `json:"order_id"`
	BrokerOrderID string    `json:"broker_order_id"`
	Quantity      float64   `json:"quantity"`
	Price         float64   `json:"price"`
	Status        string    `json:"status"` // FILLED or REJECTED
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DecisionRecord is the audit trail of the decision engine: every blocked
// decision with its reason code and the numeric inputs that produced it.
type DecisionRecord struct {
	gorm.Model `json:"-"`
	Symbol     string    `json:"symbol"`
	Accepted   bool      `json:"accepted"`
	Reason     string    `json:"reason,omitempty"`
	Score      float64   `json:"score"`
	Notional   float64   `json:"notional"`
	CreatedAt  time.Time `json:"created_at"`
}
