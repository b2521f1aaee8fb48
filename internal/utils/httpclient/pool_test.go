package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_GetPut(t *testing.T) {
	pool := NewPool(2)

	c1 := pool.Get()
	c2 := pool.Get()
	assert.NotNil(t, c1)
	assert.NotNil(t, c2)

	// Empty pool still hands out clients
	c3 := pool.Get()
	assert.NotNil(t, c3)

	pool.Put(c1)
	pool.Put(c2)
	// Pool full; surplus is discarded without blocking
	pool.Put(c3)
}

func TestPool_Closed(t *testing.T) {
	pool := NewPool(1)
	pool.Close()

	// Get after close falls back to a fresh client
	assert.NotNil(t, pool.Get())
	pool.Put(newClient())
}

func TestGetGlobalPool(t *testing.T) {
	assert.Same(t, GetGlobalPool(), GetGlobalPool())
}
