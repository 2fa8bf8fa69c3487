package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/platform/database"
	"github.com/google/uuid"
)

// Set ALERTA_TEST_POSTGRES_DSN to run against a real database.
func TestGormAlertRepoRoundTrip(t *testing.T) {
	dsn := os.Getenv("ALERTA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ALERTA_TEST_POSTGRES_DSN not set")
	}
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo, err := NewGormAlertRepo(db)
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	name := "test-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		db.Where("community = ?", name).Delete(&alertRecord{})
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	ctx := context.Background()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{uuid.NewString(), uuid.NewString()} {
		d := &alert.Dispatch{
			ID:         id,
			ReceivedAt: base.Add(time.Duration(i) * time.Minute),
			MapLink:    alert.LocationUnavailable,
			Recipients: i + 1,
			Payload: alert.Payload{
				Tipo:         alert.TypeRedAlert,
				Descripcion:  "incendio",
				Direccion:    "Calle 1",
				Comunidad:    name,
				Ubicacion:    alert.NewLocation(-33.4, -70.6),
				UserTelegram: alert.Identity{ID: "7", FirstName: "Ana"},
			},
		}
		if err := repo.Record(ctx, d); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := repo.ListByCommunity(ctx, name, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(got))
	}
	newest := got[0]
	if newest.Recipients != 2 || !newest.ReceivedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected order or fields %+v", newest)
	}
	if newest.Payload.UserTelegram.ID != "7" || newest.Payload.Direccion != "Calle 1" || *newest.Payload.Ubicacion.Lat != -33.4 {
		t.Fatalf("payload not restored: %+v", newest.Payload)
	}
	if newest.MapLink != alert.LocationUnavailable {
		t.Fatalf("unexpected map link %s", newest.MapLink)
	}
}
