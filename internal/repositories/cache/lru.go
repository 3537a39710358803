package cache

import (
	"context"
	"time"

	"github.com/SscSPs/approval_engine/internal/core/domain"
	"github.com/SscSPs/approval_engine/internal/core/ports"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSize = 1024
	DefaultTTL  = time.Minute
)

// LRU is an in-process PermissionCache. Entries expire after ttl, which bounds
// how long a revoked role keeps granting access on this node.
type LRU struct {
	entries *expirable.LRU[string, domain.PermissionSet]
}

var _ ports.PermissionCache = (*LRU)(nil)

// NewLRU builds an expirable LRU cache. Non-positive arguments use the defaults.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRU{entries: expirable.NewLRU[string, domain.PermissionSet](size, nil, ttl)}
}

func (c *LRU) Get(_ context.Context, userID string) (domain.PermissionSet, bool) {
	return c.entries.Get(userID)
}

func (c *LRU) Set(_ context.Context, userID string, set domain.PermissionSet) {
	c.entries.Add(userID, set)
}

func (c *LRU) Invalidate(_ context.Context, userID string) {
	c.entries.Remove(userID)
}

// Len reports the number of live entries.
func (c *LRU) Len() int {
	return c.entries.Len()
}
