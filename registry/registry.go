// Package registry reads agent definitions from the definition service.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agentdesk/agentdesk/domain"
)

// ErrAgentNotFound reports that the definition service has no such agent.
var ErrAgentNotFound = errors.New("agent not found")

// Directory is the read-only agent-definition collaborator.
type Directory interface {
	GetAgent(ctx context.Context, agentID string) (*domain.AgentDefinition, error)
	ListAgents(ctx context.Context) ([]domain.AgentDefinition, error)
}

// Client is the HTTP client for the agent-definition service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new definition-service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetAgent fetches one agent definition.
func (c *Client) GetAgent(ctx context.Context, agentID string) (*domain.AgentDefinition, error) {
	var agent domain.AgentDefinition
	if err := c.getJSON(ctx, c.baseURL+"/agents/"+agentID, &agent); err != nil {
		return nil, err
	}
	if agent.ID == "" {
		agent.ID = agentID
	}
	return &agent, nil
}

// ListAgents fetches all agent definitions.
func (c *Client) ListAgents(ctx context.Context) ([]domain.AgentDefinition, error) {
	var agents []domain.AgentDefinition
	if err := c.getJSON(ctx, c.baseURL+"/agents", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrAgentNotFound
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("definition service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// Clock returns the current time; injected so tests control expiry.
type Clock func() time.Time

// Cache wraps a Directory with a per-agent-id TTL cache. It is an explicit
// object with injected time, not process-wide state, so instances are
// isolated and tests can advance the clock.
type Cache struct {
	directory Directory
	ttl       time.Duration
	now       Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	agent   domain.AgentDefinition
	fetched time.Time
}

// DefaultTTL is how long a cached definition stays fresh.
const DefaultTTL = 5 * time.Minute

// NewCache creates a caching wrapper around a directory. A zero ttl selects
// DefaultTTL; a nil clock selects time.Now.
func NewCache(directory Directory, ttl time.Duration, now Clock) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		directory: directory,
		ttl:       ttl,
		now:       now,
		entries:   make(map[string]cacheEntry),
	}
}

// GetAgent returns the cached definition while fresh, fetching otherwise.
func (c *Cache) GetAgent(ctx context.Context, agentID string) (*domain.AgentDefinition, error) {
	c.mu.Lock()
	if entry, ok := c.entries[agentID]; ok && c.now().Sub(entry.fetched) < c.ttl {
		agent := entry.agent
		c.mu.Unlock()
		return &agent, nil
	}
	c.mu.Unlock()

	agent, err := c.directory.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[agentID] = cacheEntry{agent: *agent, fetched: c.now()}
	c.mu.Unlock()
	return agent, nil
}

// ListAgents always hits the directory; the full listing is not cached, but
// each returned definition primes the per-id cache.
func (c *Cache) ListAgents(ctx context.Context) ([]domain.AgentDefinition, error) {
	agents, err := c.directory.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	fetched := c.now()
	c.mu.Lock()
	for _, agent := range agents {
		if agent.ID != "" {
			c.entries[agent.ID] = cacheEntry{agent: agent, fetched: fetched}
		}
	}
	c.mu.Unlock()
	return agents, nil
}
