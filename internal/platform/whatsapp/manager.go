package whatsapp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// Channel is one paired WhatsApp account used to relay alerts.
type Channel struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Client    *whatsmeow.Client
	Device    *store.Device
	QRChan    <-chan whatsmeow.QRChannelItem
}

// Connected reports whether the channel can deliver messages right now.
func (c *Channel) Connected() bool {
	return c != nil && c.Client != nil && c.Client.IsConnected()
}

type Manager struct {
	mu       sync.RWMutex
	channels map[string]*Channel // key: name
	log      waLog.Logger
	lastQR   map[string]string
}

func NewManager(log waLog.Logger) *Manager {
	return &Manager{channels: make(map[string]*Channel), log: log, lastQR: make(map[string]string)}
}

func (m *Manager) Create(ctx context.Context, name string) (*Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.channels[name]; exists {
		return nil, ErrAlreadyExists
	}
	ch := &Channel{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
	m.channels[name] = ch
	return ch, nil
}

// AttachClient links an already built whatsmeow client to the channel.
func (m *Manager) AttachClient(name string, dev *store.Device, client *whatsmeow.Client, qr <-chan whatsmeow.QRChannelItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[name]
	if !ok {
		return ErrNotFound
	}
	ch.Device = dev
	ch.Client = client
	ch.QRChan = qr
	return nil
}

// StartEventLoop logs connection lifecycle events for the channel.
func (m *Manager) StartEventLoop(ch *Channel) {
	if ch.Client == nil {
		return
	}
	ch.Client.AddEventHandler(func(evt any) {
		switch e := evt.(type) {
		case *events.Connected:
			m.log.Infof("channel %s connected", ch.Name)
		case *events.Disconnected:
			m.log.Warnf("channel %s disconnected", ch.Name)
		case *events.PairSuccess:
			m.log.Infof("channel %s paired. JID: %s, Platform: %s", ch.Name, e.ID.String(), e.Platform)
			m.clearQR(ch.Name)
		case *events.LoggedOut:
			m.log.Warnf("channel %s logged out. Reason: %s", ch.Name, e.Reason.String())
		}
	})
}

func (m *Manager) Get(name string) (*Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[name]
	return ch, ok
}

// Ready returns the channel only when its client is connected.
func (m *Manager) Ready(name string) (*Channel, error) {
	ch, ok := m.Get(name)
	if !ok {
		return nil, ErrNotFound
	}
	if ch.Client == nil {
		return nil, ErrClientUnavailable
	}
	if !ch.Client.IsConnected() {
		return nil, ErrNotConnected
	}
	return ch, nil
}

// Disconnect closes the client connection, if any, and forgets the channel.
func (m *Manager) Disconnect(name string) {
	m.mu.Lock()
	ch, ok := m.channels[name]
	delete(m.channels, name)
	delete(m.lastQR, name)
	m.mu.Unlock()
	if ok && ch.Client != nil {
		ch.Client.Disconnect()
	}
}

func (m *Manager) SetLastQR(name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[name]; !ok {
		return ErrNotFound
	}
	m.lastQR[name] = code
	return nil
}

func (m *Manager) GetLastQR(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.lastQR[name]
	return v, ok
}

func (m *Manager) clearQR(name string) {
	m.mu.Lock()
	delete(m.lastQR, name)
	m.mu.Unlock()
}
