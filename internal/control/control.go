// Package control is the HTTP control plane around the pipeline: market
// update ingestion, kill switch, and read-only views of positions, fills
// and risk alerts. The pipeline itself never depends on this package.
package control

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ksred/tradepulse/internal/agent"
	"github.com/ksred/tradepulse/internal/broker"
	"github.com/ksred/tradepulse/internal/bus"
	"github.com/ksred/tradepulse/internal/journal"
	"github.com/ksred/tradepulse/internal/types"
	"github.com/ksred/tradepulse/pkg/response"
)

// GinHandlers contains the HTTP handlers for the control plane.
type GinHandlers struct {
	bus     *bus.EventBus
	agent   *agent.Agent
	broker  broker.Broker
	journal *journal.Database
	prices  *PriceCache
}

// NewGinHandlers creates the control-plane handler set.
func NewGinHandlers(b *bus.EventBus, a *agent.Agent, brk broker.Broker, j *journal.Database, prices *PriceCache) *GinHandlers {
	return &GinHandlers{
		bus:     b,
		agent:   a,
		broker:  brk,
		journal: j,
		prices:  prices,
	}
}

// HealthHandler reports liveness.
func (h *GinHandlers) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(200, "ok")
	}
}

// IngestTickHandler accepts a market update from an external feeder and
// publishes it on the ticks topic.
func (h *GinHandlers) IngestTickHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var update types.MarketUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		if update.Symbol == "" {
			response.BadRequest(c, "symbol is required")
			return
		}
		if update.Timestamp.IsZero() {
			update.Timestamp = time.Now().UTC()
		}

		h.prices.Set(update.Symbol, update.Close)
		h.bus.Publish(bus.TopicTicks, update)

		response.Success(c, gin.H{
			"queued": h.bus.Topic(bus.TopicTicks).Len(),
		})
	}
}

// StatusHandler reports the kill-switch state and queue depths.
func (h *GinHandlers) StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, gin.H{
			"trading_enabled": h.agent.Enabled(),
			"queue_depths": gin.H{
				bus.TopicTicks:      h.bus.Topic(bus.TopicTicks).Len(),
				bus.TopicOrders:     h.bus.Topic(bus.TopicOrders).Len(),
				bus.TopicFills:      h.bus.Topic(bus.TopicFills).Len(),
				bus.TopicRiskAlerts: h.bus.Topic(bus.TopicRiskAlerts).Len(),
			},
		})
	}
}

// KillHandler disables trading.
func (h *GinHandlers) KillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.agent.SetEnabled(false)
		log.Warn().Str("client_id", c.GetString("clientID")).Msg("kill switch engaged")
		response.Success(c, gin.H{"trading_enabled": false})
	}
}

// ReviveHandler re-enables trading.
func (h *GinHandlers) ReviveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.agent.SetEnabled(true)
		log.Info().Str("client_id", c.GetString("clientID")).Msg("trading re-enabled")
		response.Success(c, gin.H{"trading_enabled": true})
	}
}

// PositionsHandler returns the broker's position snapshot.
func (h *GinHandlers) PositionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, h.broker.Positions())
	}
}

// FillsHandler returns recent fills from the journal.
func (h *GinHandlers) FillsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		fills, err := h.journal.RecentFills(limit)
		response.Handle(c, fills, err)
	}
}

// AlertsHandler returns recent blocked decisions from the journal.
func (h *GinHandlers) AlertsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		decisions, err := h.journal.RecentDecisions(limit)
		response.Handle(c, decisions, err)
	}
}
