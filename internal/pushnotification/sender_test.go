package pushnotification

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskbounty/internal/config"
	"github.com/kazz187/taskbounty/internal/eventbus"
)

func subscriberKeys(t *testing.T) (string, string) {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(auth)
}

func vapidEnv(t *testing.T) *config.VAPIDEnv {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return &config.VAPIDEnv{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		VAPIDContact:    "mailto:test@example.com",
	}
}

func TestSubscriptions_Upsert(t *testing.T) {
	ctx := context.Background()
	subs := NewSubscriptions()
	first := subs.Upsert(ctx, "https://push.example/1", "k1", "a1")
	second := subs.Upsert(ctx, "https://push.example/1", "k2", "a2")
	assert.Equal(t, first.ID, second.ID)

	list := subs.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "k2", list[0].P256dhKey)

	assert.True(t, subs.DeleteByEndpoint(ctx, "https://push.example/1"))
	assert.False(t, subs.DeleteByEndpoint(ctx, "https://push.example/1"))
	assert.Empty(t, subs.List(ctx))
}

func TestSender_RemovesGoneSubscriptions(t *testing.T) {
	var hits atomic.Int32
	gone := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer gone.Close()
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ok.Close()

	ctx := context.Background()
	subs := NewSubscriptions()
	p256dh, auth := subscriberKeys(t)
	subs.Upsert(ctx, gone.URL, p256dh, auth)
	kept := subs.Upsert(ctx, ok.URL, p256dh, auth)

	sender := NewSender(vapidEnv(t), subs)
	sender.SendToAll(ctx, &NotificationPayload{Title: "t", Body: "b"})

	assert.Equal(t, int32(2), hits.Load())
	list := subs.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)
}

func TestSender_DisabledWithoutKeys(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	subs := NewSubscriptions()
	subs.Upsert(context.Background(), srv.URL, "k", "a")
	sender := NewSender(&config.VAPIDEnv{}, subs)
	assert.False(t, sender.Enabled())
	sender.SendToAll(context.Background(), &NotificationPayload{Title: "t"})
	assert.Zero(t, hits.Load())
}

func TestDispatcher_ForwardsNotifications(t *testing.T) {
	received := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		select {
		case received <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subs := NewSubscriptions()
	p256dh, auth := subscriberKeys(t)
	subs.Upsert(ctx, srv.URL, p256dh, auth)

	bus := eventbus.New()
	d := NewDispatcher(bus, NewSender(vapidEnv(t), subs))
	go d.Start(ctx)

	require.Eventually(t, func() bool {
		bus.PublishNew(eventbus.EventTasksRefreshed, "", "", nil)
		bus.Notify(eventbus.SeveritySuccess, "3", "Registered for task #3")
		select {
		case <-received:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
}

func TestPayloadFor(t *testing.T) {
	p := payloadFor(&eventbus.Event{
		ID:         "01H",
		Payload:    "Error in completing the task",
		ResourceID: "4",
		Metadata:   map[string]string{"severity": "error"},
	})
	assert.Equal(t, "TaskBounty: action failed", p.Title)
	assert.Equal(t, "/tasks/4", p.URL)
	assert.Equal(t, "01H", p.Tag)

	p = payloadFor(&eventbus.Event{Payload: "Fetched tasks!", Metadata: map[string]string{"severity": "info"}})
	assert.Equal(t, "TaskBounty", p.Title)
	assert.Empty(t, p.URL)
}
