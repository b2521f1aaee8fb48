package httpclient

import (
	"net/http"
	"sync"
	"time"
)

// Pool hands out shared HTTP clients with tuned transport settings so
// outbound calls reuse connections instead of building a client per call.
type Pool struct {
	clients chan *http.Client
	mu      sync.RWMutex
	closed  bool
}

// NewPool creates a pool pre-populated with maxClients clients
func NewPool(maxClients int) *Pool {
	p := &Pool{clients: make(chan *http.Client, maxClients)}
	for i := 0; i < maxClients; i++ {
		p.clients <- newClient()
	}
	return p
}

func newClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Get retrieves a client from the pool, creating one if the pool is empty
func (p *Pool) Get() *http.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return newClient()
	}

	select {
	case client := <-p.clients:
		return client
	default:
		return newClient()
	}
}

// Put returns a client to the pool; surplus clients are discarded
func (p *Pool) Put(client *http.Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}

	select {
	case p.clients <- client:
	default:
	}
}

// Close marks the pool closed
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	close(p.clients)
}

var (
	globalPool *Pool
	once       sync.Once
)

// GetGlobalPool returns the process-wide client pool
func GetGlobalPool() *Pool {
	once.Do(func() {
		globalPool = NewPool(20)
	})
	return globalPool
}
