package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	consolehttp "github.com/contactevin2u/orderops-console/internal/interfaces/http"
)

func newStore(ttl time.Duration) *consolehttp.SessionStore {
	return consolehttp.NewSessionStore(ttl, func(id string) *consolehttp.Session {
		return &consolehttp.Session{ID: id}
	})
}

func fiberApp(store *consolehttp.SessionStore) *fiber.App {
	app := fiber.New()
	app.Get("/probe", store.Middleware(), func(c *fiber.Ctx) error {
		return c.SendString(consolehttp.SessionFrom(c).ID)
	})
	return app
}

func testGet(t *testing.T, app *fiber.App, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if cookie != "" {
		req.Header.Set("Cookie", consolehttp.SessionCookie+"="+cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSessionStore_SweepDropsIdleSessions(t *testing.T) {
	store := newStore(time.Minute)

	app := fiberApp(store)
	resp := testGet(t, app, "")
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == consolehttp.SessionCookie {
			cookie = c.Value
		}
	}
	require.NotEmpty(t, cookie)
	require.Equal(t, 1, store.Len())

	// Nothing is idle yet.
	assert.Zero(t, store.Sweep(time.Now()))
	assert.Equal(t, 1, store.Len())

	// Past the TTL everything goes.
	assert.Equal(t, 1, store.Sweep(time.Now().Add(2*time.Minute)))
	assert.Zero(t, store.Len())
}

func TestSessionStore_ExpiredCookieGetsAFreshSession(t *testing.T) {
	store := newStore(time.Nanosecond) // everything expires immediately

	app := fiberApp(store)
	resp := testGet(t, app, "")
	var first string
	for _, c := range resp.Cookies() {
		if c.Name == consolehttp.SessionCookie {
			first = c.Value
		}
	}
	require.NotEmpty(t, first)

	time.Sleep(time.Millisecond)
	resp = testGet(t, app, first)
	var second string
	for _, c := range resp.Cookies() {
		if c.Name == consolehttp.SessionCookie {
			second = c.Value
		}
	}
	assert.NotEmpty(t, second, "an expired session is replaced, not revived")
	assert.NotEqual(t, first, second)
}
