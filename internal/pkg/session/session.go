// Package session keeps the denylist of logged-out session tokens.
package session

import (
	"context"
	"sync"
	"time"
)

// Revoker records token ids that must no longer be accepted
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker is a process-local denylist used when no redis is configured
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker creates an empty in-memory denylist
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke adds tokenID until its natural expiry
func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	m.gc()
	return nil
}

// IsRevoked reports whether tokenID is on the denylist
func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if m.now().After(exp) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// gc drops entries whose tokens have expired anyway; callers hold mu
func (m *MemoryRevoker) gc() {
	now := m.now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
}
