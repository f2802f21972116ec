// Package logging hands out one named structured logger per subsystem
// (master, chunkserver, client) plus a transaction-scoped child logger for
// two-phase append rounds. Built on zap.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.Mutex
	base   *zap.Logger
	cached = map[string]*zap.SugaredLogger{}
)

func root() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		base = l
	}
	return base
}

// Get returns the named component logger (created lazily, cached).
func Get(component string) *zap.SugaredLogger {
	mu.Lock()
	if l, ok := cached[component]; ok {
		mu.Unlock()
		return l
	}
	mu.Unlock()

	l := root().Sugar().Named(component)

	mu.Lock()
	cached[component] = l
	mu.Unlock()
	return l
}

// Transaction returns a child logger scoped to a two-phase append
// transaction, carrying the chunk ID and txid on every record.
func Transaction(component, chunkID, txID string) *zap.SugaredLogger {
	return Get(component).With("chunk_id", chunkID, "txid", txID)
}

// SetDevelopment switches every future Get()/Transaction() call to a
// human-readable console encoder, useful for `go run` during development.
func SetDevelopment() {
	mu.Lock()
	defer mu.Unlock()
	l, err := zap.NewDevelopment()
	if err == nil {
		base = l
		cached = map[string]*zap.SugaredLogger{}
	}
}
