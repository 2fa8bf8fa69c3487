package whatsapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite"
)

// StoreFactory opens one sqlstore container per alert channel under baseDir.
type StoreFactory struct {
	baseDir string
	log     waLog.Logger
	mu      sync.Mutex
}

func NewStoreFactory(baseDir string, log waLog.Logger) *StoreFactory {
	return &StoreFactory{baseDir: baseDir, log: log}
}

// Path returns the sqlite file backing the named channel.
func (f *StoreFactory) Path(channel string) string {
	return filepath.Join(f.baseDir, "whatsapp-"+channel+".db")
}

func (f *StoreFactory) NewDeviceStore(ctx context.Context, channel string) (*sqlstore.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_txlock=immediate", f.Path(channel))
	container, err := sqlstore.New(ctx, "sqlite", dsn, f.log.Sub("DB"))
	if err != nil {
		return nil, fmt.Errorf("open device store: %w", err)
	}
	return container, nil
}
