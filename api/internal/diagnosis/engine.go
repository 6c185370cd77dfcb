package diagnosis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Engine talks to one identification backend. It returns the raw response;
// normalization happens in Client.
type Engine interface {
	Name() string
	Identify(ctx context.Context, req IdentifyRequest) (IdentifyResponse, error)
}

// ModelEngine is an Engine backed by a selectable model. WithModel returns
// a new engine; the receiver is never modified, so one engine can serve
// many chats concurrently.
type ModelEngine interface {
	Engine
	Model() string
	WithModel(model string) Engine
}

// Manager хранит выбранный клиент для каждого чата.
type Manager struct {
	def    *Client
	byName map[string]*Client
	m      sync.Map // chatID -> *Client
}

// NewManager: def must be one of clients (or is added to them).
func NewManager(def *Client, clients ...*Client) *Manager {
	m := &Manager{def: def, byName: make(map[string]*Client, len(clients)+1)}
	for _, c := range append(clients, def) {
		if c == nil {
			continue
		}
		m.byName[strings.ToLower(c.Engine().Name())] = c
	}
	return m
}

func (m *Manager) Get(chatID int64) *Client {
	if v, ok := m.m.Load(chatID); ok {
		return v.(*Client)
	}
	return m.def
}

// Set переключает движок чата по имени.
func (m *Manager) Set(chatID int64, name string) (*Client, error) {
	return m.SetModel(chatID, name, "")
}

// SetModel переключает движок чата и, если model задан, модель этого
// движка. Модель меняется только для chatID, общий клиент не трогаем.
func (m *Manager) SetModel(chatID int64, name, model string) (*Client, error) {
	c, ok := m.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(m.Names(), " | "))
	}
	if model = strings.TrimSpace(model); model != "" {
		me, ok := c.Engine().(ModelEngine)
		if !ok {
			return nil, fmt.Errorf("engine %q has no model choice", c.Engine().Name())
		}
		c = c.withEngine(me.WithModel(model))
	}
	m.m.Store(chatID, c)
	return c, nil
}

// Lookup — клиент по имени движка, без привязки к чату.
func (m *Manager) Lookup(name string) (*Client, bool) {
	if strings.TrimSpace(name) == "" {
		return m.def, m.def != nil
	}
	c, ok := m.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

func (m *Manager) Names() []string {
	out := make([]string, 0, len(m.byName))
	for n := range m.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
