package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/damacus/iron-drive/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type codeInbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *codeInbox) SendCode(_ context.Context, email, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.codes == nil {
		i.codes = make(map[string]string)
	}
	i.codes[email] = code
	return nil
}

func (i *codeInbox) code(email string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[strings.ToLower(email)]
}

// browser replays cookies and the CSRF token between requests like a client would
type browser struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
	csrf    string
}

func newBrowser(t *testing.T, e *echo.Echo) *browser {
	return &browser{t: t, e: e, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	if b.csrf != "" && req.Method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", b.csrf)
	}

	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	if token := rec.Header().Get("X-CSRF-Token"); token != "" {
		b.csrf = token
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) send(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return b.do(req)
}

// signIn runs the email code handshake for email
func (b *browser) signIn(inbox *codeInbox, email string) {
	b.t.Helper()
	rec := b.send(http.MethodPost, "/auth/code", `{"email":"`+email+`"}`)
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())

	var challenge map[string]string
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &challenge))

	rec = b.send(http.MethodPost, "/auth/verify",
		`{"challengeId":"`+challenge["challengeId"]+`","code":"`+inbox.code(email)+`"}`)
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(b.t, b.cookies, "IronDrive")
}

func newJourneyServer(t *testing.T) (*echo.Echo, *memoryBucket, *codeInbox) {
	t.Helper()
	bucket := newMemoryBucket()
	inbox := &codeInbox{}
	s := store.Instrument(store.NewS3Store(bucket, store.S3Config{Bucket: "cloudbox", MaxStorageMB: 1}))

	e, registry := newServer(testConfig(), s, inbox)
	t.Cleanup(registry.Close)
	return e, bucket, inbox
}
