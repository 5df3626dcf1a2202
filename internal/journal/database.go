// Package journal persists the pipeline's audit trail: orders handed to the
// broker, fills and rejections, and blocked decisions.
package journal

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ksred/tradepulse/internal/decision"
	"github.com/ksred/tradepulse/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// RecordOrder persists an order intent as it is handed to the broker.
func (d *Database) RecordOrder(intent types.OrderIntent) error {
	record := OrderRecord{
		OrderID:   intent.IntentID,
		Symbol:    intent.Symbol,
		Side:      intent.Side,
		OrderType: intent.OrderType,
		Quantity:  intent.Quantity,
		Price:     intent.Price,
		Status:    types.StatusNew,
	}
	return d.db.Create(&record).Error
}

// UpdateOrderStatus moves a recorded order to a new status.
func (d *Database) UpdateOrderStatus(orderID, status string) error {
	return d.db.Model(&OrderRecord{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

// GetOrder retrieves a recorded order by its ID.
func (d *Database) GetOrder(orderID string) (*OrderRecord, error) {
	var record OrderRecord
	if err := d.db.Where("order_id = ?", orderID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// RecordFill persists a realized execution.
func (d *Database) RecordFill(fill types.TradeFill, brokerOrderID string) error {
	record := FillRecord{
		FillID:        uuid.New().String(),
		OrderID:       fill.OrderID,
		BrokerOrderID: brokerOrderID,
		Quantity:      fill.ExecutedQty,
		Price:         fill.AvgPrice,
		Status:        types.StatusFilled,
	}
	return d.db.Create(&record).Error
}

// RecordRejection persists a failed placement so broker errors leave a trace.
func (d *Database) RecordRejection(resp types.OrderResponse) error {
	record := FillRecord{
		FillID:        uuid.New().String(),
		OrderID:       resp.ClientOrderID,
		BrokerOrderID: resp.BrokerOrderID,
		Quantity:      resp.FilledQuantity,
		Price:         resp.AvgPrice,
		Status:        types.StatusRejected,
		Reason:        resp.Reason,
	}
	return d.db.Create(&record).Error
}

// RecordDecision persists the audit row for a decision.
func (d *Database) RecordDecision(dec decision.Decision) error {
	record := DecisionRecord{
		Symbol:   dec.Symbol,
		Accepted: dec.Accepted,
		Reason:   dec.Reason,
		Score:    dec.Score,
		Notional: dec.Notional,
	}
	return d.db.Create(&record).Error
}

// RecentFills returns the most recent fill records, newest first.
func (d *Database) RecentFills(limit int) ([]FillRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []FillRecord
	err := d.db.Order("created_at desc").Limit(limit).Find(&records).Error
	return records, err
}

// RecentDecisions returns the most recent decision records, newest first.
func (d *Database) RecentDecisions(limit int) ([]DecisionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []DecisionRecord
	err := d.db.Order("created_at desc").Limit(limit).Find(&records).Error
	return records, err
}
