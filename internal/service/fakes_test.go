package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/events"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// mockNotifier records queued mails.
type mockNotifier struct {
	mock.Mock
}

func (n *mockNotifier) RegistrationReceived(ctx context.Context, u *model.User) error {
	return n.Called(ctx, u).Error(0)
}

func (n *mockNotifier) UserDecided(ctx context.Context, u *model.User) error {
	return n.Called(ctx, u).Error(0)
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		BcryptCost:      4,
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 1,
		PublicBaseURL:   "https://mezun.example.com",
	}
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

var (
	superAdmin   = Actor{ID: uuid.New(), Email: "root@istun.edu.tr", Role: model.RoleSuperAdmin}
	contentAdmin = Actor{ID: uuid.New(), Email: "editor@istun.edu.tr", Role: model.RoleContentAdmin}
	noRole       = Actor{ID: uuid.New(), Email: "member@istun.edu.tr", Role: model.RoleNone}
)

var nopLog = zerolog.Nop()
