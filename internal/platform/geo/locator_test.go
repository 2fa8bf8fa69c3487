package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/faeln1/alerta-roja/internal/app/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    session.Position
		wantErr bool
	}{
		{name: "ok", status: 200, body: `{"lat":-33.45,"lon":-70.66}`, want: session.Position{Lat: -33.45, Lon: -70.66}},
		{name: "missing lon", status: 200, body: `{"lat":1}`, wantErr: true},
		{name: "status", status: 503, body: `{}`, wantErr: true},
		{name: "garbage", status: 200, body: `<html>`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			pos, err := NewLookup(srv.URL, srv.Client(), nil).CurrentPosition(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, pos)
		})
	}
}

func TestLookupWithoutURL(t *testing.T) {
	_, err := NewLookup("", nil, nil).CurrentPosition(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestStaticHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Static{Pos: session.Position{Lat: 1, Lon: 2}}.CurrentPosition(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
