// Package intercept implements the response-interception layer: an explicit
// middleware chain registered on a single shared HTTP client, instead of a
// monkey-patched global fetch. Install and uninstall are ordinary
// subscribe/unsubscribe calls and are idempotent.
package intercept

import (
	"net/http"
	"sync"
)

// Interceptor observes a completed exchange. It must hand back a response
// whose body is still fully readable by the original caller.
type Interceptor interface {
	Name() string
	Intercept(req *http.Request, resp *http.Response) *http.Response
}

// Chain is an http.RoundTripper wrapping a base transport with zero or more
// interceptors. Requests and transport errors pass through untouched.
type Chain struct {
	base http.RoundTripper

	mu           sync.RWMutex
	interceptors []Interceptor
}

func NewChain(base http.RoundTripper) *Chain {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Chain{base: base}
}

// Use subscribes an interceptor. Installing the same name twice is a no-op,
// so a double mount cannot corrupt the chain.
func (c *Chain) Use(i Interceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.interceptors {
		if existing.Name() == i.Name() {
			return
		}
	}
	c.interceptors = append(c.interceptors, i)
}

// Remove unsubscribes by name; removing an absent interceptor is a no-op.
func (c *Chain) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for idx, existing := range c.interceptors {
		if existing.Name() == name {
			c.interceptors = append(c.interceptors[:idx], c.interceptors[idx+1:]...)
			return
		}
	}
}

// Len reports the number of installed interceptors.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.interceptors)
}

func (c *Chain) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	installed := append([]Interceptor(nil), c.interceptors...)
	c.mu.RUnlock()

	for _, i := range installed {
		resp = i.Intercept(req, resp)
	}
	return resp, nil
}

// Client returns an http.Client using this chain as its transport.
func (c *Chain) Client() *http.Client {
	return &http.Client{Transport: c}
}
