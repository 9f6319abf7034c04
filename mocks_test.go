package skillsprint_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"

	"github.com/goliatone/go-skillsprint"
)

// MockNotifier implements skillsprint.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Success(message string) {
	m.Called(message)
}

func (m *MockNotifier) Error(message string) {
	m.Called(message)
}

// MockInvalidator implements skillsprint.Invalidator
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// FailingStore rejects every operation
type FailingStore struct {
	Err error
}

func (f FailingStore) Get(context.Context, string) (string, error) { return "", f.Err }
func (f FailingStore) Set(context.Context, string, string) error   { return f.Err }
func (f FailingStore) Clear(context.Context) error                 { return f.Err }

var errStoreDown = errors.New("store unavailable")

// mintToken signs claims the way the backend would. The client never
// verifies the signature, any key works.
func mintToken(claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return token
}

func userToken(sub, role string) string {
	return mintToken(jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
}

func newAuther(store skillsprint.Store) *skillsprint.Auther {
	return skillsprint.NewAuther(store).WithLogger(skillsprint.NoopLogger())
}

// gatedStore reads the token once, then holds the value until released.
// It lets a test run session writes between Init's read and its update.
type gatedStore struct {
	*skillsprint.MemoryStore
	once    sync.Once
	reading chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: skillsprint.NewMemoryStore(),
		reading:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Get(ctx context.Context, key string) (string, error) {
	value, err := g.MemoryStore.Get(ctx, key)
	if key == skillsprint.KeyToken {
		g.once.Do(func() {
			close(g.reading)
			<-g.release
		})
	}
	return value, err
}
