package session

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestParsePage(t *testing.T) {
	initData := "query_id=AA&user=" + url.QueryEscape(`{"id":42,"first_name":"Luz","username":"luz"}`) + "&auth_date=1&hash=abc"

	tests := []struct {
		name      string
		query     string
		initData  string
		wantID    string
		wantFirst string
		noUser    bool
		wantErr   error
	}{
		{name: "missing community", query: "id=1", wantErr: ErrMissingCommunity},
		{name: "params win", query: "comunidad=norte&id=5&first_name=Ana", initData: initData, wantID: "5", wantFirst: "Ana"},
		{name: "host user", query: "comunidad=norte", initData: initData, wantID: "42", wantFirst: "Luz"},
		{name: "anonymous", query: "comunidad=norte", noUser: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			page, err := ParsePage(q, tt.initData)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "norte", page.Community)
			if tt.noUser {
				assert.Nil(t, page.Identity)
				return
			}
			require.NotNil(t, page.Identity)
			assert.Equal(t, tt.wantID, page.Identity.ID)
			assert.Equal(t, tt.wantFirst, page.Identity.FirstName)
		})
	}
}

func TestParsePageURL(t *testing.T) {
	page, err := ParsePageURL("https://example.org/?comunidad=sur&id=9&first_name=Eva&last_name=Paz", "")
	require.NoError(t, err)
	require.NotNil(t, page.Identity)
	assert.Equal(t, "Paz", page.Identity.LastName)
	assert.Equal(t, "", page.Identity.Username)
	assert.Equal(t, "👋 Hola Eva en SUR", page.Greeting())
}

func TestParseInitDataRejectsBrokenUser(t *testing.T) {
	_, err := ParseInitData("user=" + url.QueryEscape("{not json"))
	require.Error(t, err)

	id, err := ParseInitData("auth_date=1")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestGreetingWithoutFirstName(t *testing.T) {
	page := Page{Community: "centro"}
	assert.Equal(t, "👥 Comunidad detectada: CENTRO", page.Greeting())
}
