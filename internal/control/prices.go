package control

import "sync"

// PriceCache holds the last observed close per symbol. The paper broker
// uses it as the fill-price source for market orders.
type PriceCache struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// NewPriceCache creates an empty cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{prices: make(map[string]float64)}
}

// Set records the latest price for a symbol.
func (p *PriceCache) Set(symbol string, price float64) {
	p.mu.Lock()
	p.prices[symbol] = price
	p.mu.Unlock()
}

// Get returns the latest price for a symbol, if one has been observed.
func (p *PriceCache) Get(symbol string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	price, ok := p.prices[symbol]
	return price, ok
}
