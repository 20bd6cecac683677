package kaproxy

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/kaproxy-go/component"
	"github.com/kbukum/kaproxy-go/util"
)

// Component manages a Client's lifecycle inside a component.Registry.
type Component struct {
	cfg  Config
	opts []Option

	mu     sync.RWMutex
	client *Client
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component that builds its client on Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{cfg: cfg, opts: opts}
}

// Name implements component.Component.
func (c *Component) Name() string { return "kaproxy" }

// Start builds the client. No connection is made until the first call.
func (c *Component) Start(ctx context.Context) error {
	client, err := NewFromConfig(c.cfg, c.opts...)
	if err != nil {
		return fmt.Errorf("kaproxy client: %w", err)
	}
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	return nil
}

// Stop closes the client.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}

// Health reports whether the client is started and whether it currently
// holds a connection.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()

	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if client == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}
	if t, ok := client.transport.(interface{ Connected() bool }); ok && !t.Connected() {
		h.Message = "idle"
	}
	return h
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	details := c.cfg.Address
	if c.cfg.Token != "" {
		details += " token=" + util.MaskSecret(c.cfg.Token, 4)
	}
	return component.Description{
		Name:    "kaproxy client",
		Type:    "client",
		Details: details,
	}
}

// Client returns the running client, or nil before Start.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}
