package services

import (
	"errors"
	"fmt"

	"traffic-monitor-service/internal/domain"
)

// Raised by NextUsable when a full circular scan finds no key under the
// usage limit. Recoverable per route: the caller records the miss and
// moves on to the next route.
var ErrKeysExhausted = errors.New("all API keys exhausted")

func IsExhausted(err error) bool {
	return errors.Is(err, ErrKeysExhausted)
}

// Owns the API keys and their usage counters for the monitoring period.
//
// Rotation is round-robin-with-skip: NextUsable scans forward from the
// last-tried position instead of index 0, so load spreads across keys
// and a key found exhausted is permanently skipped until an external
// restart resets the counters.
//
// The pool is mutated only from the single collection goroutine and
// carries no lock. If fetches are ever parallelized, NextUsable and
// RecordSuccess must become one atomic compare-and-increment so two
// routes cannot both claim a near-exhausted key and overshoot quota.
type KeyPool struct {
	keys   []string
	usage  map[string]int
	limit  int
	cursor int
}

// Create a pool over an ordered, non-empty key sequence.
// The sequence order is the rotation order. limit is the per-key call
// budget for the monitoring period and must be positive.
func NewKeyPool(keys []string, limit int) (*KeyPool, error) {
	if len(keys) == 0 {
		return nil, errors.New("new key pool: at least one API key is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("new key pool: usage limit must be positive, got %d", limit)
	}

	usage := make(map[string]int, len(keys))
	for _, k := range keys {
		if k == "" {
			return nil, errors.New("new key pool: empty API key in sequence")
		}
		usage[k] = 0
	}

	return &KeyPool{keys: keys, usage: usage, limit: limit}, nil
}

// Return the next key whose usage is under the limit.
// The scan starts at the cursor and wraps once around the pool; the
// cursor is left pointing at the returned key so the next call resumes
// from there. ErrKeysExhausted when every key is at or over the limit.
func (p *KeyPool) NextUsable() (string, error) {
	for i := 0; i < len(p.keys); i++ {
		idx := (p.cursor + i) % len(p.keys)
		key := p.keys[idx]
		if p.usage[key] < p.limit {
			p.cursor = idx
			return key, nil
		}
	}
	return "", ErrKeysExhausted
}

// Count one successful call against the key.
// Unknown keys are ignored rather than rejected, so a stale reference
// held across a config change cannot corrupt the counters.
func (p *KeyPool) RecordSuccess(key string) {
	if _, ok := p.usage[key]; ok {
		p.usage[key]++
	}
}

func (p *KeyPool) Len() int { return len(p.keys) }

// Read-only diagnostic view of usage, keyed by masked key.
func (p *KeyPool) UsageSnapshot() map[string]int {
	out := make(map[string]int, len(p.keys))
	for _, k := range p.keys {
		out[domain.MaskKey(k)] = p.usage[k]
	}
	return out
}
