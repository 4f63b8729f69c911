package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
)

const secret = "test-secret"

func testUser() *models.User {
	cid := int64(1)
	return &models.User{ID: 42, Name: "Eva", Role: models.RoleEmployee, CompanyID: &cid, CompanyName: "Acme"}
}

func TestEstablishAndResolve(t *testing.T) {
	m := NewManager(NewMemoryStore(), secret, time.Hour, zerolog.Nop())

	token, err := m.Establish(context.Background(), testUser())
	if err != nil {
		t.Fatalf("establish: %v", err)
	}

	p := m.Principal(context.Background(), token)
	if !p.Authenticated() {
		t.Fatalf("expected an authenticated principal")
	}
	if p.UserID != 42 || p.Role != models.RoleEmployee || !p.SameCompany(1) {
		t.Fatalf("principal does not match the user: %+v", p)
	}
}

func TestInvalidTokensYieldGuest(t *testing.T) {
	m := NewManager(NewMemoryStore(), secret, time.Hour, zerolog.Nop())

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if p := m.Principal(context.Background(), token); p.Authenticated() {
			t.Fatalf("token %q must resolve to guest", token)
		}
	}

	// A token signed with a different secret is as good as no token.
	other := NewManager(NewMemoryStore(), "other-secret", time.Hour, zerolog.Nop())
	token, err := other.Establish(context.Background(), testUser())
	if err != nil {
		t.Fatal(err)
	}
	if p := m.Principal(context.Background(), token); p.Authenticated() {
		t.Fatalf("foreign token must resolve to guest")
	}
}

func TestIdleExpiry(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, secret, time.Hour, zerolog.Nop())

	token, err := m.Establish(context.Background(), testUser())
	if err != nil {
		t.Fatal(err)
	}

	// Walk the clock past the idle window; the store record is stale even
	// though the signed token itself is still valid.
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	store.now = m.now

	if p := m.Principal(context.Background(), token); p.Authenticated() {
		t.Fatalf("idle session must resolve to guest")
	}
}

func TestActivitySlidesExpiry(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, secret, 20*time.Minute, zerolog.Nop())

	base := time.Now()
	m.now = func() time.Time { return base }
	store.now = m.now

	token, err := m.Establish(context.Background(), testUser())
	if err != nil {
		t.Fatal(err)
	}

	// Activity at minute 15 pushes the deadline to minute 35, so minute 30
	// is still inside the window.
	m.now = func() time.Time { return base.Add(15 * time.Minute) }
	store.now = m.now
	if p := m.Principal(context.Background(), token); !p.Authenticated() {
		t.Fatalf("session must still be live at minute 15")
	}

	m.now = func() time.Time { return base.Add(30 * time.Minute) }
	store.now = m.now
	if p := m.Principal(context.Background(), token); !p.Authenticated() {
		t.Fatalf("activity must slide the idle deadline")
	}

	// Silence from minute 30 to minute 55 exceeds the window.
	m.now = func() time.Time { return base.Add(55 * time.Minute) }
	store.now = m.now
	if p := m.Principal(context.Background(), token); p.Authenticated() {
		t.Fatalf("session must expire after 20 idle minutes")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	m := NewManager(NewMemoryStore(), secret, time.Hour, zerolog.Nop())

	token, err := m.Establish(context.Background(), testUser())
	if err != nil {
		t.Fatal(err)
	}

	m.Logout(context.Background(), token)
	if p := m.Principal(context.Background(), token); p.Authenticated() {
		t.Fatalf("logged-out token must resolve to guest")
	}

	// Repeated and garbage logouts are no-ops.
	m.Logout(context.Background(), token)
	m.Logout(context.Background(), "garbage")
}

func TestMemoryStorePurge(t *testing.T) {
	store := NewMemoryStore()
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	if err := store.Create(context.Background(), &Session{ID: "dead", UserID: 1, ExpiresAt: past}); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(context.Background(), &Session{ID: "live", UserID: 2, ExpiresAt: future}); err != nil {
		t.Fatal(err)
	}

	store.PurgeExpired()

	if s, _ := store.Find(context.Background(), "dead"); s != nil {
		t.Fatalf("expired session must be purged")
	}
	if s, _ := store.Find(context.Background(), "live"); s == nil {
		t.Fatalf("live session must survive the purge")
	}
}

// Concurrent requests carrying the same cookie hit Find and Touch on one
// record; run with -race to verify the store serializes them.
func TestConcurrentFindAndTouch(t *testing.T) {
	store := NewMemoryStore()
	future := time.Now().Add(time.Hour)
	if err := store.Create(context.Background(), &Session{ID: "shared", UserID: 1, ExpiresAt: future}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := store.Find(context.Background(), "shared"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if err := store.Touch(context.Background(), "shared", time.Now().Add(time.Hour)); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if s, _ := store.Find(context.Background(), "shared"); s == nil {
		t.Fatalf("session must survive concurrent reads and touches")
	}
}

func TestDeleteByUser(t *testing.T) {
	store := NewMemoryStore()
	future := time.Now().Add(time.Hour)
	for _, id := range []string{"a", "b"} {
		if err := store.Create(context.Background(), &Session{ID: id, UserID: 7, ExpiresAt: future}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Create(context.Background(), &Session{ID: "c", UserID: 8, ExpiresAt: future}); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteByUser(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"a", "b"} {
		if s, _ := store.Find(context.Background(), id); s != nil {
			t.Fatalf("session %s must be gone", id)
		}
	}
	if s, _ := store.Find(context.Background(), "c"); s == nil {
		t.Fatalf("other user's session must survive")
	}
}
