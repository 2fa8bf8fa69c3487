package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
)

var ErrMissingCommunity = errors.New("community not provided")

// Page is the context the mini-app was opened with.
type Page struct {
	Community string
	// Identity is nil when neither the page nor the host identified the user.
	Identity *alert.Identity
}

// ParsePageURL reads the page context from a full mini-app URL.
func ParsePageURL(raw, initData string) (Page, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Page{}, fmt.Errorf("parse page url: %w", err)
	}
	return ParsePage(u.Query(), initData)
}

// ParsePage resolves the community and the acting identity. Page parameters
// win over the host-provided user; no identity at all is not an error.
func ParsePage(query url.Values, initData string) (Page, error) {
	page := Page{Community: strings.TrimSpace(query.Get("comunidad"))}
	if page.Community == "" {
		return page, ErrMissingCommunity
	}

	if id := strings.TrimSpace(query.Get("id")); id != "" {
		page.Identity = &alert.Identity{
			ID:        id,
			FirstName: query.Get("first_name"),
			LastName:  query.Get("last_name"),
			Username:  query.Get("username"),
		}
		return page, nil
	}

	host, err := ParseInitData(initData)
	if err != nil {
		return page, err
	}
	page.Identity = host
	return page, nil
}

// ParseInitData extracts the user object from Telegram WebApp init data.
// The signature is not checked.
func ParseInitData(initData string) (*alert.Identity, error) {
	initData = strings.TrimSpace(initData)
	if initData == "" {
		return nil, nil
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("parse init data: %w", err)
	}
	raw := values.Get("user")
	if raw == "" {
		return nil, nil
	}
	var id alert.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("decode init data user: %w", err)
	}
	return &id, nil
}

// Greeting is the status line shown right after bootstrap.
func (p Page) Greeting() string {
	name := strings.ToUpper(p.Community)
	if p.Identity != nil && strings.TrimSpace(p.Identity.FirstName) != "" {
		return fmt.Sprintf(StatusGreetingF, p.Identity.FirstName, name)
	}
	return fmt.Sprintf(StatusCommunityF, name)
}
