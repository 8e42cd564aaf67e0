package main

import (
	"context"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/luanbartole/powerblog/internal/common"
	"github.com/luanbartole/powerblog/internal/mailservice"
)

type fakeContactSender struct {
	mu   sync.Mutex
	sent []mailservice.ContactMessage
	err  error
}

func (f *fakeContactSender) SendContactMessage(ctx context.Context, msg mailservice.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return &mailservice.DeliveryError{Err: f.err}
	}
	f.sent = append(f.sent, msg)

	return nil
}

func (f *fakeContactSender) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeContactSender) messages() []mailservice.ContactMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailservice.ContactMessage(nil), f.sent...)
}

func newTestConfig() *Config {
	return &Config{
		Port:        ":0",
		Environment: "testing",
		Version:     "1.0.0",
		BcryptCost:  bcrypt.MinCost,
		Session: SessionConfig{
			Secret: "a-test-session-secret-of-32-bytes!",
			MaxAge: time.Hour,
		},
		DB: DBConfig{Driver: common.DriverSQLite},
	}
}

func newTestApplication(t *testing.T) (*application, *common.DB, *fakeContactSender) {
	t.Helper()

	db := common.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := &fakeContactSender{}

	app, err := newApplication(newTestConfig(), logger, db, nil, sender)
	require.NoError(t, err)

	return app, db, sender
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// testClient is one browser: it keeps its own cookies and never follows redirects.
type testClient struct {
	ts        *testServer
	client    *http.Client
	csrfToken string
}

var csrfFieldRX = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

func (ts *testServer) newClient(t *testing.T) *testClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		ts: ts,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, string) {
	t.Helper()
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, res.Header, string(body)
}

func (c *testClient) get(t *testing.T, path string) (int, http.Header, string) {
	t.Helper()

	res, err := c.client.Get(c.ts.URL + path)
	require.NoError(t, err)

	return readResponse(t, res)
}

// token returns the client's form token, loading a form page the first time.
func (c *testClient) token(t *testing.T) string {
	t.Helper()

	if c.csrfToken == "" {
		_, _, body := c.get(t, "/login")
		m := csrfFieldRX.FindStringSubmatch(body)
		require.NotNil(t, m, "form token missing from the login page")
		c.csrfToken = html.UnescapeString(m[1])
	}

	return c.csrfToken
}

// postForm submits form the way a browser would, token included.
func (c *testClient) postForm(t *testing.T, path string, form url.Values) (int, http.Header, string) {
	t.Helper()

	withToken := url.Values{}
	for k, v := range form {
		withToken[k] = v
	}
	withToken.Set("gorilla.csrf.Token", c.token(t))

	return c.postRaw(t, path, withToken)
}

// postRaw submits form exactly as given.
func (c *testClient) postRaw(t *testing.T, path string, form url.Values) (int, http.Header, string) {
	t.Helper()

	res, err := c.client.Post(c.ts.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)

	return readResponse(t, res)
}

// register signs up a new account and leaves the client logged in as it.
func (c *testClient) register(t *testing.T, name, email, password string) {
	t.Helper()

	status, header, _ := c.postForm(t, "/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusSeeOther, status)
	require.Equal(t, "/", header.Get("Location"))
}

func (c *testClient) createPost(t *testing.T, title string) {
	t.Helper()

	status, _, _ := c.postForm(t, "/new-post", postForm(title))
	require.Equal(t, http.StatusSeeOther, status)
}

func postForm(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"A subtitle"},
		"img_url":  {"https://example.com/image.jpg"},
		"body":     {"<p>Hello world</p>"},
	}
}
