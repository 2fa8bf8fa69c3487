package http

import (
	"encoding/json"
	stdhttp "net/http"
	"os"
	"strings"
	"sync"

	"github.com/faeln1/alerta-roja/internal/app/controllers"
	"github.com/faeln1/alerta-roja/internal/platform/metrics"
	"github.com/faeln1/alerta-roja/internal/platform/middleware"
	"github.com/faeln1/alerta-roja/internal/platform/whatsapp"
	waLog "go.mau.fi/whatsmeow/util/log"
	yaml "gopkg.in/yaml.v3"
)

type RouterConfig struct {
	CommunityCtrl *controllers.CommunityController
	AlertCtrl     *controllers.AlertController
	TelegramCtrl  *controllers.TelegramController
	Logger        waLog.Logger
	Metrics       *metrics.Collector
	WAManager     *whatsapp.Manager
	WAChannel     string
	Features      map[string]bool
	SwaggerEnable bool
	OpenAPIPath   string
}

func NewRouter(cfg RouterConfig) stdhttp.Handler {
	mux := stdhttp.NewServeMux()

	mux.HandleFunc("/", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if r.URL.Path != "/" {
			writeJSON(w, stdhttp.StatusNotFound, map[string]string{"error": "endpoint not found"})
			return
		}
		if r.Method != stdhttp.MethodGet {
			writeJSON(w, stdhttp.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		writeJSON(w, stdhttp.StatusOK, map[string]any{
			"status":      "ok",
			"name":        "Alerta Roja",
			"version":     "0.1.0",
			"description": "Backend del botón de emergencia comunitario",
			"features":    cfg.Features,
			"endpoints": map[string]string{
				"health":    "/healthz",
				"community": "/api/comunidad/{comunidad}",
				"alert":     "/api/alert",
				"register":  "/api/register",
				"webhook":   "/webhook",
			},
		})
	})

	mux.HandleFunc("/healthz", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/api/comunidades", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if r.Method != stdhttp.MethodGet {
			w.WriteHeader(stdhttp.StatusMethodNotAllowed)
			return
		}
		cfg.CommunityCtrl.List(w, r)
	})

	// GET /api/comunidad/{name} and GET /api/comunidad/{name}/alertas
	mux.HandleFunc("/api/comunidad/", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if r.Method != stdhttp.MethodGet {
			w.WriteHeader(stdhttp.StatusMethodNotAllowed)
			return
		}
		segments := splitSegments(strings.TrimPrefix(r.URL.EscapedPath(), "/api/comunidad/"))
		switch {
		case len(segments) == 1:
			cfg.CommunityCtrl.Get(w, r, segments[0])
		case len(segments) == 2 && segments[1] == "alertas" && cfg.AlertCtrl != nil:
			cfg.AlertCtrl.History(w, r, segments[0])
		default:
			writeJSON(w, stdhttp.StatusNotFound, struct{}{})
		}
	})

	mux.HandleFunc("/api/alert", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if r.Method != stdhttp.MethodPost {
			w.WriteHeader(stdhttp.StatusMethodNotAllowed)
			return
		}
		cfg.AlertCtrl.Create(w, r)
	})

	if cfg.TelegramCtrl != nil {
		mux.HandleFunc("/api/register", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			if r.Method != stdhttp.MethodPost {
				w.WriteHeader(stdhttp.StatusMethodNotAllowed)
				return
			}
			cfg.TelegramCtrl.Register(w, r)
		})
		mux.HandleFunc("/webhook", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			if r.Method != stdhttp.MethodPost {
				w.WriteHeader(stdhttp.StatusMethodNotAllowed)
				return
			}
			cfg.TelegramCtrl.Webhook(w, r)
		})
	}

	if cfg.WAManager != nil {
		mux.HandleFunc("/whatsapp/status", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			ch, _ := cfg.WAManager.Get(cfg.WAChannel)
			out := map[string]any{"channel": cfg.WAChannel, "connected": ch.Connected()}
			if code, ok := cfg.WAManager.GetLastQR(cfg.WAChannel); ok && !ch.Connected() {
				out["qr"] = code
			}
			writeJSON(w, stdhttp.StatusOK, out)
		})
	}

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics.Handler())
	}

	if cfg.SwaggerEnable {
		registerDocs(mux, cfg.OpenAPIPath)
	}

	var handler stdhttp.Handler = mux
	handler = middleware.Logging(orNoop(cfg.Logger))(handler)
	handler = middleware.Metrics(cfg.Metrics, routeLabel)(handler)
	handler = middleware.CORS(handler)
	return handler
}

func registerDocs(mux *stdhttp.ServeMux, path string) {
	if path == "" {
		path = "docs/openapi.yaml"
	}
	var (
		once     sync.Once
		yamlData []byte
		yamlErr  error
	)
	loadYAML := func() ([]byte, error) {
		once.Do(func() { yamlData, yamlErr = os.ReadFile(path) })
		return yamlData, yamlErr
	}
	mux.HandleFunc("/openapi.yaml", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		data, err := loadYAML()
		if err != nil {
			w.WriteHeader(stdhttp.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(data)
	})
	mux.HandleFunc("/openapi.json", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		data, err := loadYAML()
		if err != nil {
			w.WriteHeader(stdhttp.StatusNotFound)
			return
		}
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			w.WriteHeader(stdhttp.StatusInternalServerError)
			return
		}
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			w.WriteHeader(stdhttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(jsonBytes)
	})
	mux.HandleFunc("/docs", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head><title>Alerta Roja API</title><link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css"/></head><body><div id="swagger-ui"></div><script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script><script>window.onload=()=>{SwaggerUIBundle({url:'/openapi.yaml',dom_id:'#swagger-ui'});};</script></body></html>`))
	})
}

// routeLabel collapses community names so metrics keep a bounded label set.
func routeLabel(r *stdhttp.Request) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, "/api/comunidad/") {
		switch path {
		case "/", "/healthz", "/api/comunidades", "/api/alert", "/api/register", "/webhook", "/metrics", "/whatsapp/status", "/openapi.yaml", "/openapi.json", "/docs":
			return path
		}
		return "other"
	}
	if strings.HasSuffix(strings.TrimSuffix(path, "/"), "/alertas") {
		return "/api/comunidad/{name}/alertas"
	}
	return "/api/comunidad/{name}"
}

func splitSegments(path string) []string {
	raw := strings.Split(path, "/")
	out := make([]string, 0, len(raw))
	for _, segment := range raw {
		if segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func writeJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func orNoop(log waLog.Logger) waLog.Logger {
	if log == nil {
		return waLog.Noop
	}
	return log
}
