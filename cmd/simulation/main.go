package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ksred/tradepulse/internal/agent"
	"github.com/ksred/tradepulse/internal/broker"
	"github.com/ksred/tradepulse/internal/bus"
	"github.com/ksred/tradepulse/internal/database"
	"github.com/ksred/tradepulse/internal/decision"
	"github.com/ksred/tradepulse/internal/executor"
	"github.com/ksred/tradepulse/internal/journal"
	"github.com/ksred/tradepulse/internal/risk"
	"github.com/ksred/tradepulse/internal/types"
)

const numTicks = 600

var symbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "META"}

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// simStats accumulates pipeline outcomes across collector goroutines.
type simStats struct {
	mu             sync.Mutex
	fills          int
	rejections     int
	totalValue     float64
	fillsPerSymbol map[string]int
	blockedReasons map[string]int
}

func newSimStats() *simStats {
	return &simStats{
		fillsPerSymbol: make(map[string]int),
		blockedReasons: make(map[string]int),
	}
}

func (s *simStats) addFill(fill types.TradeFill, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fills++
	s.totalValue += fill.ExecutedQty * fill.AvgPrice
	s.fillsPerSymbol[symbol]++
}

func (s *simStats) addRejection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejections++
}

func (s *simStats) addBlocked(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockedReasons[reason]++
}

// main runs the full pipeline in-process against a random-walk price feed
// and prints a summary of what the decision and execution stages did.
func main() {
	db, err := database.NewDatabase(":memory:")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	journalDB := journal.NewDatabase(db)

	account := risk.AccountSnapshot{
		Capital:          100000,
		MaxRiskPerTrade:  0.02,
		MaxTotalExposure: 50000,
		MaxDailyLoss:     5000,
	}

	eventBus := bus.NewEventBus()

	var priceMu sync.RWMutex
	lastPrices := make(map[string]float64)
	paperBroker := broker.NewPaperBroker(broker.WithFillPrice(func(symbol string) (float64, bool) {
		priceMu.RLock()
		defer priceMu.RUnlock()
		price, ok := lastPrices[symbol]
		return price, ok
	}))

	engine := decision.NewEngine(decision.MomentumScorer{}, decision.RuleBasedExplainer{})
	tradeAgent := agent.NewAgent(eventBus, engine, account, journalDB)
	orderExecutor := executor.NewExecutor(eventBus, paperBroker, journalDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tradeAgent.Run(ctx)
	go orderExecutor.Run(ctx)

	// Collect fills, rejections and risk alerts off the bus.
	stats := newSimStats()
	var collectors sync.WaitGroup

	collectors.Add(1)
	go func() {
		defer collectors.Done()
		topic := eventBus.Topic(bus.TopicFills)
		for {
			item, err := topic.Receive(ctx)
			if err != nil {
				return
			}
			switch v := item.(type) {
			case types.TradeFill:
				stats.addFill(v, v.Metadata["symbol"])
			case types.OrderResponse:
				stats.addRejection()
			}
		}
	}()

	collectors.Add(1)
	go func() {
		defer collectors.Done()
		topic := eventBus.Topic(bus.TopicRiskAlerts)
		for {
			item, err := topic.Receive(ctx)
			if err != nil {
				return
			}
			if dec, ok := item.(decision.Decision); ok {
				stats.addBlocked(dec.Reason)
			}
		}
	}()

	log.Info().Int("ticks", numTicks).Msg("Starting simulation")
	start := time.Now()

	prices := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		prices[symbol] = 100 + rand.Float64()*900
	}

	for i := 0; i < numTicks; i++ {
		symbol := symbols[i%len(symbols)]
		prices[symbol] *= 1 + (rand.Float64()-0.5)*0.02

		priceMu.Lock()
		lastPrices[symbol] = prices[symbol]
		priceMu.Unlock()

		eventBus.Publish(bus.TopicTicks, types.MarketUpdate{
			Symbol:    symbol,
			Timestamp: time.Now().UTC(),
			Open:      prices[symbol],
			High:      prices[symbol],
			Low:       prices[symbol],
			Close:     prices[symbol],
			Volume:    float64(rand.Intn(10000) + 100),
		})
	}

	// Wait for the pipeline to drain, then stop the loops.
	for eventBus.Topic(bus.TopicTicks).Len() > 0 || eventBus.Topic(bus.TopicOrders).Len() > 0 {
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)

	tradeAgent.Stop()
	cancel()
	collectors.Wait()

	printSummary(stats, paperBroker, time.Since(start))
}

func printSummary(stats *simStats, paperBroker *broker.PaperBroker, duration time.Duration) {
	stats.mu.Lock()
	defer stats.mu.Unlock()

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("TRADEPULSE SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	blocked := 0
	for _, count := range stats.blockedReasons {
		blocked += count
	}

	fmt.Printf(`
Pipeline Statistics
-------------------
Ticks Fed:        %d
Fills:            %d
Rejections:       %d
Blocked:          %d
Total Value:      $%.2f
Duration:         %v

Fills by Symbol
---------------
`, numTicks, stats.fills, stats.rejections, blocked, stats.totalValue, duration.Round(time.Millisecond))

	maxCount := 0
	for _, count := range stats.fillsPerSymbol {
		if count > maxCount {
			maxCount = count
		}
	}
	for symbol, count := range stats.fillsPerSymbol {
		barLength := 0
		if maxCount > 0 {
			barLength = count * 20 / maxCount
		}
		fmt.Printf("%-6s: %s (%d)\n", symbol, strings.Repeat("#", barLength), count)
	}

	fmt.Println("\nBlocked Decisions by Reason")
	fmt.Println("---------------------------")
	for reason, count := range stats.blockedReasons {
		fmt.Printf("%-24s: %d\n", reason, count)
	}

	fmt.Println("\nFinal Positions")
	fmt.Println("---------------")
	for symbol, qty := range paperBroker.Positions() {
		fmt.Printf("%-6s: %+.4f\n", symbol, qty)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))

	log.Info().
		Int("fills", stats.fills).
		Int("blocked", blocked).
		Float64("total_value", stats.totalValue).
		Dur("duration", duration).
		Msg("Simulation completed")
}
