package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// ConnectionStates remembers the last observed gateway state per tenant.
type ConnectionStates struct {
	c *gocache.Cache
}

func NewConnectionStates() *ConnectionStates {
	return &ConnectionStates{c: gocache.New(gocache.NoExpiration, 0)}
}

// Swap stores connected for tenantID and returns the previous value.
// known is false the first time a tenant is observed.
func (s *ConnectionStates) Swap(tenantID string, connected bool) (prev bool, known bool) {
	if v, ok := s.c.Get(tenantID); ok {
		prev, known = v.(bool)
	}
	s.c.Set(tenantID, connected, gocache.NoExpiration)
	return prev, known
}

func (s *ConnectionStates) Get(tenantID string) (connected bool, known bool) {
	v, ok := s.c.Get(tenantID)
	if !ok {
		return false, false
	}
	connected, known = v.(bool)
	return connected, known
}

func (s *ConnectionStates) Len() int {
	return s.c.ItemCount()
}
