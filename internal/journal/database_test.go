package journal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradepulse/internal/database"
	"github.com/ksred/tradepulse/internal/decision"
	"github.com/ksred/tradepulse/internal/journal"
	"github.com/ksred/tradepulse/internal/types"
)

func newTestJournal(t *testing.T) *journal.Database {
	t.Helper()
	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	return journal.NewDatabase(db)
}

func TestRecordOrderAndGet(t *testing.T) {
	j := newTestJournal(t)

	intent := types.OrderIntent{
		IntentID:  "intent-1",
		Symbol:    "AAPL",
		Quantity:  16,
		Side:      types.SideBuy,
		OrderType: types.OrderTypeMarket,
	}
	require.NoError(t, j.RecordOrder(intent))

	record, err := j.GetOrder("intent-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "AAPL", record.Symbol)
	assert.Equal(t, types.SideBuy, record.Side)
	assert.Equal(t, 16.0, record.Quantity)
	assert.Equal(t, types.StatusNew, record.Status)
}

func TestUpdateOrderStatus(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.RecordOrder(types.OrderIntent{
		IntentID: "intent-2",
		Symbol:   "MSFT",
		Quantity: 1,
		Side:     types.SideSell,
	}))
	require.NoError(t, j.UpdateOrderStatus("intent-2", types.StatusFilled))

	record, err := j.GetOrder("intent-2")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, types.StatusFilled, record.Status)
}

func TestGetOrderUnknown(t *testing.T) {
	j := newTestJournal(t)

	record, err := j.GetOrder("no-such-order")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestRecordFillAndRecent(t *testing.T) {
	j := newTestJournal(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordFill(types.TradeFill{
			OrderID:     "intent-3",
			ExecutedQty: 10,
			AvgPrice:    100,
		}, "paper-abc"))
	}

	fills, err := j.RecentFills(2)
	require.NoError(t, err)
	require.Len(t, fills, 2)
	for _, fill := range fills {
		assert.Equal(t, "intent-3", fill.OrderID)
		assert.Equal(t, "paper-abc", fill.BrokerOrderID)
		assert.Equal(t, types.StatusFilled, fill.Status)
		assert.NotEmpty(t, fill.FillID)
	}
}

func TestRecordRejectionKeepsReason(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.RecordRejection(types.OrderResponse{
		ClientOrderID: "intent-4",
		Status:        types.StatusRejected,
		Reason:        "order placement failed: quantity must be positive",
	}))

	fills, err := j.RecentFills(0)
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, types.StatusRejected, fills[0].Status)
	assert.Contains(t, fills[0].Reason, "quantity must be positive")
}

func TestRecordDecisionAndRecent(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.RecordDecision(decision.Decision{
		Symbol:   "GOOGL",
		Accepted: false,
		Reason:   "DAILY_LOSS_BREACH",
		Score:    0.8,
		Notional: 1600,
	}))

	decisions, err := j.RecentDecisions(10)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "GOOGL", decisions[0].Symbol)
	assert.False(t, decisions[0].Accepted)
	assert.Equal(t, "DAILY_LOSS_BREACH", decisions[0].Reason)
	assert.Equal(t, 1600.0, decisions[0].Notional)
}
