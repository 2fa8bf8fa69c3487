package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faeln1/alerta-roja/internal/app/session"
	"github.com/faeln1/alerta-roja/internal/config"
	"github.com/faeln1/alerta-roja/internal/platform/backend"
	"github.com/faeln1/alerta-roja/internal/platform/geo"
	"github.com/faeln1/alerta-roja/internal/tui"
	"github.com/faeln1/alerta-roja/pkg/logger"
	"github.com/joho/godotenv"
	waLog "go.mau.fi/whatsmeow/util/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := config.LoadClient()

	var (
		pageURL    = flag.String("page", cfg.PageURL, "mini-app URL carrying comunidad/id/first_name query parameters")
		comunidad  = flag.String("comunidad", "", "community name (overrides -page)")
		userID     = flag.String("id", "", "telegram user id")
		firstName  = flag.String("first_name", "", "user first name")
		lastName   = flag.String("last_name", "", "user last name")
		username   = flag.String("username", "", "telegram username")
		backendURL = flag.String("backend", cfg.BackendURL, "alert backend base URL")
		message    = flag.String("m", "", "send one alert with this description and exit")
		realTime   = flag.Bool("gps", false, "start with live location enabled")
	)
	flag.Parse()

	query, err := buildQuery(*pageURL, map[string]string{
		"comunidad":  *comunidad,
		"id":         *userID,
		"first_name": *firstName,
		"last_name":  *lastName,
		"username":   *username,
	})
	if err != nil {
		log.Fatalf("invalid page url: %v", err)
	}
	page, err := session.ParsePage(query, cfg.InitData)
	if errors.Is(err, session.ErrMissingCommunity) {
		fmt.Fprintln(os.Stderr, session.NoticeMissingCommunity)
		os.Exit(2)
	}
	if err != nil {
		log.Printf("warning: ignoring host user context: %v", err)
	}

	appLog, closer, err := logger.NewFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		log.Fatalf("log file: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := backend.New(*backendURL, nil, appLog.Sub("Backend"))
	deps := session.Deps{
		Roster:  client,
		Sender:  client,
		Locator: newLocator(cfg, appLog),
		Log:     appLog.Sub("Session"),
	}

	if strings.TrimSpace(*message) != "" {
		code := runHeadless(ctx, page, deps, *message, *realTime, os.Stdout)
		stop()
		closer.Close()
		os.Exit(code)
	}

	state := tui.NewFormState()
	deps.View = state
	ctrl, err := session.New(page, deps)
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	ctrl.SetRealTime(*realTime)

	program := tea.NewProgram(tui.New(ctx, ctrl, state), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		log.Fatalf("alerta: %v", err)
	}
}

// runHeadless performs one submission and prints every status change and notice.
func runHeadless(ctx context.Context, page session.Page, deps session.Deps, text string, realTime bool, out io.Writer) int {
	deps.View = printView{w: out}
	ctrl, err := session.New(page, deps)
	if err != nil {
		return 2
	}
	if err := ctrl.LoadRoster(ctx); err != nil {
		return 1
	}
	ctrl.SetRealTime(realTime)
	ctrl.EditDescription(text)
	err = ctrl.Submit(ctx)
	switch {
	case errors.Is(err, session.ErrInvalidDescription) && strings.TrimSpace(text) != "":
		fmt.Fprintln(out, session.NoticeInvalidDescription)
		return 1
	case err != nil:
		return 1
	}
	return 0
}

func newLocator(cfg *config.ClientConfig, log waLog.Logger) session.Locator {
	switch {
	case cfg.HasStaticPosition():
		return geo.Static{Pos: session.Position{Lat: *cfg.GeoLat, Lon: *cfg.GeoLon}}
	case cfg.GeoLookupURL != "":
		return geo.NewLookup(cfg.GeoLookupURL, nil, log.Sub("Geo"))
	default:
		return nil
	}
}

// buildQuery merges the page URL query with explicit flag overrides.
func buildQuery(pageURL string, overrides map[string]string) (url.Values, error) {
	query := url.Values{}
	if strings.TrimSpace(pageURL) != "" {
		u, err := url.Parse(strings.TrimSpace(pageURL))
		if err != nil {
			return nil, err
		}
		query = u.Query()
	}
	for k, v := range overrides {
		if v != "" {
			query.Set(k, v)
		}
	}
	return query, nil
}

type printView struct{ w io.Writer }

func (printView) SetSubmitEnabled(bool)   {}
func (printView) SetSubmitLabel(string)   {}
func (printView) ClearDescription()       {}
func (v printView) SetStatus(text string) { fmt.Fprintln(v.w, text) }
func (v printView) Notify(text string)    { fmt.Fprintln(v.w, text) }
