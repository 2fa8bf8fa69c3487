package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/faeln1/alerta-roja/pkg/storage"
)

func TestNewRequiresEndpointAndBucket(t *testing.T) {
	for _, cfg := range []Config{{}, {Endpoint: "localhost:9000"}, {Bucket: "alertas"}} {
		if _, err := New(context.Background(), cfg); !errors.Is(err, storage.ErrNotConfigured) {
			t.Fatalf("New(%+v) = %v, want ErrNotConfigured", cfg, err)
		}
	}
}

func TestObjectURLPrefersPublicURL(t *testing.T) {
	c := &Client{bucket: "alertas", publicURL: "https://cdn.example.com"}
	if got := c.objectURL("alerts/norte/1.json"); got != "https://cdn.example.com/alerts/norte/1.json" {
		t.Fatalf("objectURL = %s", got)
	}
}
