package skillsprint_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-skillsprint"
)

type clientFixture struct {
	server   *httptest.Server
	store    *skillsprint.MemoryStore
	auther   *skillsprint.Auther
	client   *skillsprint.Client
	location *skillsprint.Location
	notifier *MockNotifier
}

func newClientFixture(t *testing.T, start string, handler http.HandlerFunc) *clientFixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := skillsprint.NewMemoryStore()
	location := skillsprint.NewLocation(start)
	notifier := &MockNotifier{}

	auther := newAuther(store).WithNavigator(location)
	client := skillsprint.NewClient(skillsprint.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	}, auther).
		WithLogger(skillsprint.NoopLogger()).
		WithNavigator(location).
		WithNotifier(notifier)
	auther.WithInvalidator(client)

	ctx := context.Background()
	location.OnReload(func(string) { auther.Init(ctx) })
	auther.Init(ctx)

	return &clientFixture{
		server:   server,
		store:    store,
		auther:   auther,
		client:   client,
		location: location,
		notifier: notifier,
	}
}

func (f *clientFixture) login(t *testing.T, token string) {
	t.Helper()
	_, err := f.auther.Login(context.Background(), token, "", "")
	require.NoError(t, err)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func textCode(err error) string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ""
	}
	return richErr.TextCode
}

func TestNewClientDefaults(t *testing.T) {
	client := skillsprint.NewClient(skillsprint.ClientConfig{}, newAuther(skillsprint.NewMemoryStore()))
	assert.Equal(t, skillsprint.DefaultBaseURL, client.BaseURL())

	client = skillsprint.NewClient(skillsprint.ClientConfig{BaseURL: "http://localhost:8080/"}, newAuther(skillsprint.NewMemoryStore()))
	assert.Equal(t, "http://localhost:8080", client.BaseURL())
}

func TestClientAttachesCurrentToken(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	f := newClientFixture(t, "/challenges", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	require.NoError(t, f.client.Get(ctx, "/api/ping", nil))

	f.login(t, "t1")
	require.NoError(t, f.client.Get(ctx, "/api/ping", nil))

	// replaced underneath the auther, the next request must see it
	require.NoError(t, f.store.Set(ctx, skillsprint.KeyToken, "t2"))
	require.NoError(t, f.client.Get(ctx, "/api/ping", nil))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "Bearer t1", "Bearer t2"}, seen)
}

func TestClientWithoutSessionSendsAnonymousRequests(t *testing.T) {
	headers := make(chan string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("Authorization")
		if r.URL.Path == "/api/private" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client := skillsprint.NewClient(skillsprint.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	}, nil).WithLogger(skillsprint.NoopLogger())

	require.NoError(t, client.Get(context.Background(), "/api/ping", nil))
	assert.Empty(t, <-headers)

	err := client.Get(context.Background(), "/api/private", nil)
	assert.True(t, skillsprint.IsUnauthorized(err))
	assert.Empty(t, <-headers)
}

func TestClientRequestID(t *testing.T) {
	ids := make(chan string, 2)
	f := newClientFixture(t, "/", func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get(skillsprint.HeaderRequestID)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := skillsprint.WithRequestID(context.Background(), "req-42")
	require.NoError(t, f.client.Get(ctx, "/api/ping", nil))
	assert.Equal(t, "req-42", <-ids)

	require.NoError(t, f.client.Get(context.Background(), "/api/ping", nil))
	_, err := uuid.Parse(<-ids)
	assert.NoError(t, err)
}

func TestClientUnauthorizedExpiresSession(t *testing.T) {
	f := newClientFixture(t, "/challenges", respond(http.StatusUnauthorized, `{"message":"token expired"}`))
	f.login(t, userToken("alice", "USER"))

	err := f.client.Get(context.Background(), skillsprint.PathChallenges, nil)
	require.Error(t, err)

	assert.True(t, skillsprint.IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, skillsprint.StatusCode(err))
	assert.Equal(t, skillsprint.TextCodeUnauthorized, textCode(err))
	assert.Equal(t, "token expired", skillsprint.ErrorMessage(err, "fallback"))

	assert.Nil(t, f.auther.User())
	assert.Empty(t, f.auther.Token(context.Background()))
	assert.Equal(t, skillsprint.LoginPath, f.location.CurrentPath())
	assert.Equal(t, 1, f.location.Reloads())
	assert.False(t, f.auther.Loading())

	f.notifier.AssertNotCalled(t, "Error", mock.Anything)
}

func TestClientUnauthorizedOnLoginPageDoesNotRedirect(t *testing.T) {
	f := newClientFixture(t, skillsprint.LoginPath, respond(http.StatusUnauthorized, `{"message":"Bad credentials"}`))

	_, err := f.client.Login(context.Background(), skillsprint.NewLoginRequest("alice", "wrong", skillsprint.RoleUser, ""))
	require.Error(t, err)

	assert.Equal(t, "Bad credentials", skillsprint.ErrorMessage(err, "Login failed"))
	assert.Equal(t, skillsprint.LoginPath, f.location.CurrentPath())
	assert.Equal(t, 0, f.location.Reloads())
	f.notifier.AssertNotCalled(t, "Error", mock.Anything)
}

func TestClientForbiddenKeepsSession(t *testing.T) {
	f := newClientFixture(t, "/challenges", respond(http.StatusForbidden, `{"message":"admins only"}`))
	f.notifier.On("Error", skillsprint.MessageNotAuthorized).Once()
	f.login(t, userToken("alice", "USER"))

	err := f.client.Delete(context.Background(), "/api/challenges/delete/1")
	require.Error(t, err)

	assert.True(t, skillsprint.IsForbidden(err))
	assert.Equal(t, "admins only", skillsprint.ErrorMessage(err, "fallback"))
	require.NotNil(t, f.auther.User())
	assert.Equal(t, "/challenges", f.location.CurrentPath())
	f.notifier.AssertExpectations(t)
}

func TestClientServerErrors(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newClientFixture(t, "/challenges", respond(status, "upstream down"))
			f.notifier.On("Error", skillsprint.MessageServerError).Once()
			f.login(t, "opaque")

			err := f.client.Get(context.Background(), skillsprint.PathChallenges, nil)
			require.Error(t, err)

			assert.True(t, skillsprint.IsServerError(err))
			assert.Equal(t, status, skillsprint.StatusCode(err))
			assert.Equal(t, "upstream down", skillsprint.ErrorMessage(err, "fallback"))
			require.NotNil(t, f.auther.User())
			f.notifier.AssertExpectations(t)
		})
	}
}

func TestClientOtherStatusesAreOnlyReturned(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category goerrors.Category
		message  string
	}{
		{name: "bad request json", status: http.StatusBadRequest, body: `{"message":"Username taken"}`, category: goerrors.CategoryBadInput, message: "Username taken"},
		{name: "bad request string", status: http.StatusBadRequest, body: `"Email invalid"`, category: goerrors.CategoryBadInput, message: "Email invalid"},
		{name: "not found empty", status: http.StatusNotFound, body: "", category: goerrors.CategoryNotFound, message: "fallback"},
		{name: "conflict object", status: http.StatusConflict, body: `{"error":"dup"}`, category: goerrors.CategoryConflict, message: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newClientFixture(t, "/challenges", respond(tt.status, tt.body))
			f.login(t, "opaque")

			err := f.client.Post(context.Background(), "/api/things", map[string]string{"a": "b"}, nil)
			require.Error(t, err)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, tt.category, richErr.Category)
			assert.Equal(t, skillsprint.TextCodeRequestFailed, richErr.TextCode)
			assert.Equal(t, tt.status, skillsprint.StatusCode(err))
			assert.Equal(t, tt.message, skillsprint.ErrorMessage(err, "fallback"))

			require.NotNil(t, f.auther.User())
			f.notifier.AssertNotCalled(t, "Error", mock.Anything)
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	f := newClientFixture(t, "/challenges", respond(http.StatusOK, "[]"))
	f.notifier.On("Error", skillsprint.MessageNetworkError).Once()
	f.login(t, "opaque")
	f.server.Close()

	err := f.client.Get(context.Background(), skillsprint.PathChallenges, nil)
	require.Error(t, err)

	assert.True(t, skillsprint.IsNetworkError(err))
	assert.Equal(t, 0, skillsprint.StatusCode(err))
	assert.Equal(t, "fallback", skillsprint.ErrorMessage(err, "fallback"))
	require.NotNil(t, f.auther.User())
	f.notifier.AssertExpectations(t)
}

func TestClientCancelledRequestIsSilent(t *testing.T) {
	f := newClientFixture(t, "/challenges", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	f.login(t, "opaque")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := f.client.Get(ctx, skillsprint.PathChallenges, nil)
	require.Error(t, err)

	assert.False(t, skillsprint.IsNetworkError(err))
	require.NotNil(t, f.auther.User())
	f.notifier.AssertNotCalled(t, "Error", mock.Anything)
}

func TestClientInvalidResponseBody(t *testing.T) {
	f := newClientFixture(t, "/challenges", respond(http.StatusOK, "<html>oops</html>"))

	var out map[string]any
	err := f.client.Get(context.Background(), "/api/thing", &out)
	require.Error(t, err)
	assert.Equal(t, skillsprint.TextCodeInvalidResponse, textCode(err))
	f.notifier.AssertNotCalled(t, "Error", mock.Anything)
}

func TestClientEmptySuccessBody(t *testing.T) {
	f := newClientFixture(t, "/challenges", respond(http.StatusCreated, ""))

	var out map[string]any
	require.NoError(t, f.client.Post(context.Background(), "/api/thing", nil, &out))
	assert.Nil(t, out)
}
