package skillsprint_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-skillsprint"
)

func TestLoginThenReloadRestoresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"username": "alice", "password": "x", "role": "USER"}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"a.b.c","role":"USER","username":"alice"}`))
	}))
	defer server.Close()

	ctx := context.Background()
	store := skillsprint.NewMemoryStore()

	auther := newAuther(store)
	client := skillsprint.NewClient(skillsprint.ClientConfig{BaseURL: server.URL, HTTPClient: server.Client()}, auther).
		WithLogger(skillsprint.NoopLogger())
	auther.Init(ctx)

	_, err := skillsprint.SignIn(ctx, client, auther, skillsprint.NewLoginRequest("alice", "x", skillsprint.RoleUser, ""))
	require.NoError(t, err)

	// a reload starts from storage only
	reloaded := newAuther(store)
	reloaded.Init(ctx)

	assert.Equal(t, &skillsprint.Session{Token: "a.b.c", Role: skillsprint.RoleUser, Username: "alice"}, reloaded.User())
}

func TestLogoutDuringNetworkFailure(t *testing.T) {
	f := newClientFixture(t, "/challenges", respond(http.StatusOK, ""))
	f.notifier.On("Error", skillsprint.MessageNetworkError).Maybe()
	f.login(t, userToken("alice", "USER"))
	f.server.Close()

	require.NoError(t, f.auther.Logout(context.Background()))

	for _, key := range skillsprint.SessionKeys {
		value, err := f.store.Get(context.Background(), key)
		require.NoError(t, err)
		assert.Empty(t, value, key)
	}
	assert.Nil(t, f.auther.User())
	assert.Equal(t, skillsprint.LoginPath, f.location.CurrentPath())
}

func TestForbiddenLeavesListUnchanged(t *testing.T) {
	f := newClientFixture(t, "/challenges", respond(http.StatusForbidden, ""))
	f.notifier.On("Error", skillsprint.MessageNotAuthorized).Once()
	f.login(t, userToken("alice", "USER"))

	initial := []skillsprint.Challenge{{LegacyID: "1", Title: "Two Sum"}}
	view := skillsprint.NewView(initial)

	err := view.Load(context.Background(), f.client.ListChallenges)
	require.Error(t, err)
	assert.True(t, skillsprint.IsForbidden(err))

	assert.Equal(t, initial, view.State())
	assert.NotNil(t, f.auther.User())
	f.notifier.AssertExpectations(t)
}

func TestUnauthorizedMidSessionRedirectsOnce(t *testing.T) {
	f := newClientFixture(t, "/challenges/3", respond(http.StatusUnauthorized, ""))
	f.login(t, userToken("alice", "USER"))

	ctx := context.Background()
	router := skillsprint.NewRouter(f.auther, f.location, f.notifier).WithLogger(skillsprint.NoopLogger())

	_, err := f.client.ListSubmissions(ctx, "3")
	require.Error(t, err)
	assert.Equal(t, skillsprint.LoginPath, f.location.CurrentPath())

	// once on the login page further 401s do not reload again
	_, err = f.client.ListChallenges(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, f.location.Reloads())

	assert.Equal(t, skillsprint.OutcomeRedirectLogin, router.Resolve("/challenges").Outcome)
	f.notifier.AssertNotCalled(t, "Error", mock.Anything)
}

func TestAdminGuardNotifications(t *testing.T) {
	ctx := context.Background()

	anonNotifier := &MockNotifier{}
	anon := newAuther(skillsprint.NewMemoryStore())
	anon.Init(ctx)
	match := skillsprint.NewRouter(anon, skillsprint.NewLocation("/"), anonNotifier).
		WithLogger(skillsprint.NoopLogger()).
		Resolve("/admin/create-challenge")
	assert.Equal(t, skillsprint.OutcomeRedirectLogin, match.Outcome)
	anonNotifier.AssertNotCalled(t, "Error", mock.Anything)

	userNotifier := &MockNotifier{}
	userNotifier.On("Error", skillsprint.MessagePermissionDenied).Once()
	user := newAuther(skillsprint.NewMemoryStore())
	_, err := user.Login(ctx, userToken("alice", "USER"), "", "")
	require.NoError(t, err)
	location := skillsprint.NewLocation("/")
	match = skillsprint.NewRouter(user, location, userNotifier).
		WithLogger(skillsprint.NoopLogger()).
		Resolve("/admin/update-challenge/4")
	assert.Equal(t, skillsprint.OutcomeRedirectDefault, match.Outcome)
	assert.Equal(t, skillsprint.DefaultPath, location.CurrentPath())
	userNotifier.AssertExpectations(t)
}
