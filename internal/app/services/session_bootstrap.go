package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/faeln1/alerta-roja/internal/platform/whatsapp"
	"go.mau.fi/whatsmeow"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// ChannelBootstrap brings up the WhatsApp account that relays alerts.
type ChannelBootstrap struct {
	StoreFactory *whatsapp.StoreFactory
	Manager      *whatsapp.Manager
	Log          waLog.Logger
	QROut        io.Writer
}

func NewChannelBootstrap(f *whatsapp.StoreFactory, m *whatsapp.Manager, log waLog.Logger) *ChannelBootstrap {
	return &ChannelBootstrap{StoreFactory: f, Manager: m, Log: log, QROut: os.Stdout}
}

// Start opens (or creates) the device store of the channel and connects it.
// When the device was never paired, the pairing QR is printed until it is
// scanned or ctx ends.
func (b *ChannelBootstrap) Start(ctx context.Context, name string) error {
	if _, err := b.Manager.Create(ctx, name); err != nil && !errors.Is(err, whatsapp.ErrAlreadyExists) {
		return err
	}
	container, err := b.StoreFactory.NewDeviceStore(ctx, name)
	if err != nil {
		return err
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("load device: %w", err)
	}
	client := whatsmeow.NewClient(device, b.Log.Sub("Client"))

	var qrChan <-chan whatsmeow.QRChannelItem
	if device.ID == nil {
		// the QR channel must exist before Connect
		qrChan, err = client.GetQRChannel(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get QR channel: %w", err)
		}
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	if err := b.Manager.AttachClient(name, device, client, qrChan); err != nil {
		return err
	}
	if ch, ok := b.Manager.Get(name); ok {
		b.Manager.StartEventLoop(ch)
	}

	if qrChan == nil {
		b.Log.Infof("channel %s restored (already paired)", name)
		return nil
	}
	b.Log.Infof("channel %s requires QR scan", name)
	go b.watchQR(ctx, name, qrChan)
	return nil
}

func (b *ChannelBootstrap) watchQR(ctx context.Context, name string, qrChan <-chan whatsmeow.QRChannelItem) {
	for {
		select {
		case item, ok := <-qrChan:
			if !ok {
				b.Log.Infof("QR channel closed")
				return
			}
			switch item.Event {
			case "code":
				if item.Code == "" {
					continue
				}
				if err := b.Manager.SetLastQR(name, item.Code); err != nil {
					b.Log.Errorf("failed to cache QR code: %v", err)
				}
				b.Log.Infof("QR code refreshed (timeout %s)", item.Timeout)
				if b.QROut != nil {
					whatsapp.PrintQR(b.QROut, name, item.Code)
				}
			case "success":
				b.Log.Infof("channel %s paired successfully", name)
				return
			case "timeout":
				b.Log.Warnf("QR code timeout; restart the server to pair %s", name)
				return
			case "error":
				b.Log.Errorf("error event from QR channel")
			default:
				b.Log.Infof("received QR event: %s", item.Event)
			}
		case <-ctx.Done():
			b.Log.Warnf("context cancelled while waiting for QR events")
			return
		}
	}
}
