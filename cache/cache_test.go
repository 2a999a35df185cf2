package cache

import (
	"testing"
	"time"

	"github.com/dailyyoga/ttlcache/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	log, err := logger.New(&logger.Config{
		Level:    "debug",
		Encoding: "console",
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func newTestCache(t *testing.T, cfg *Config) (*Cache[string, string], *Manager) {
	t.Helper()
	mgr := NewManager(newTestLogger(t))
	c, err := NewWithManager[string, string](newTestLogger(t), cfg, mgr)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	return c, mgr
}

func TestPutGet(t *testing.T) {
	c, _ := newTestCache(t, nil)

	if _, ok := c.Put("key", "value"); ok {
		t.Error("first Put should report no previous value")
	}

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected key to be present")
	}
	if got != "value" {
		t.Errorf("expected %q, got %q", "value", got)
	}
}

func TestPut_ReturnsPrevious(t *testing.T) {
	c, _ := newTestCache(t, nil)

	c.Put("key", "one")
	prev, ok := c.Put("key", "two")
	if !ok || prev != "one" {
		t.Errorf("expected previous value %q, got %q (ok=%v)", "one", prev, ok)
	}

	got, _ := c.Get("key")
	if got != "two" {
		t.Errorf("expected %q, got %q", "two", got)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

// The reference expiry scenario: sliding expiration with a one second
// timeout, two untouched seconds, entry gone.
func TestCacheExpires(t *testing.T) {
	c, err := New[string, string](newTestLogger(t), &Config{
		Name:          "expires",
		RefreshOnRead: true,
		SweepInterval: 1 * time.Second,
		Timeout:       1 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	c.Put("key", "value")
	if got, ok := c.Get("key"); !ok || got != "value" {
		t.Fatalf("expected %q, got %q (ok=%v)", "value", got, ok)
	}

	time.Sleep(2 * time.Second)

	if _, ok := c.Get("key"); ok {
		t.Error("value should no longer exist")
	}
}

func TestFixedExpiration_ReadsDoNotExtend(t *testing.T) {
	c, _ := newTestCache(t, &Config{
		Name:          "fixed",
		RefreshOnRead: false,
		SweepInterval: 10 * time.Second, // lazy path only
		Timeout:       600 * time.Millisecond,
	})

	c.Put("key", "value")

	// Keep reading; fixed expiration must ignore the traffic.
	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, ok := c.Get("key"); !ok {
			t.Fatal("entry expired before its timeout")
		}
		time.Sleep(100 * time.Millisecond)
	}

	time.Sleep(400 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Error("entry should have expired at a fixed time despite reads")
	}
}

func TestSlidingExpiration_ReadsKeepAlive(t *testing.T) {
	c, _ := newTestCache(t, &Config{
		Name:          "sliding",
		RefreshOnRead: true,
		SweepInterval: 10 * time.Second,
		Timeout:       500 * time.Millisecond,
	})

	c.Put("key", "value")

	// Reads at intervals shorter than the timeout keep the entry alive.
	for i := 0; i < 8; i++ {
		time.Sleep(150 * time.Millisecond)
		if _, ok := c.Get("key"); !ok {
			t.Fatalf("entry expired despite refreshing reads (iteration %d)", i)
		}
	}

	// One gap longer than the timeout evicts it.
	time.Sleep(700 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Error("entry should expire after a gap longer than the timeout")
	}
}

func TestNilKeyTolerated(t *testing.T) {
	mgr := NewManager(newTestLogger(t))
	c, err := NewWithManager[*string, string](newTestLogger(t), nil, mgr)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	if _, ok := c.Put(nil, "value"); ok {
		t.Error("Put with nil key should be a no-op")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache after nil-key Put, got %d entries", c.Len())
	}
	if _, ok := c.Get(nil); ok {
		t.Error("Get with nil key should report absent")
	}
	if _, ok := c.Remove(nil); ok {
		t.Error("Remove with nil key should report absent")
	}
	if c.ContainsKey(nil) {
		t.Error("ContainsKey with nil key should be false")
	}

	key := "real"
	c.Put(&key, "value")
	if got, ok := c.Get(&key); !ok || got != "value" {
		t.Errorf("non-nil pointer key should work, got %q (ok=%v)", got, ok)
	}
}

func TestRemove(t *testing.T) {
	c, mgr := newTestCache(t, nil)

	c.Put("key", "value")
	prev, ok := c.Remove("key")
	if !ok || prev != "value" {
		t.Errorf("expected removed value %q, got %q (ok=%v)", "value", prev, ok)
	}
	if _, ok := c.Remove("key"); ok {
		t.Error("second Remove should report absent")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}

	mgr.mu.Lock()
	regs := len(mgr.regs)
	mgr.mu.Unlock()
	if regs != 0 {
		t.Errorf("empty cache should be unregistered, %d registrations remain", regs)
	}
}

func TestClear(t *testing.T) {
	c, mgr := newTestCache(t, nil)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d entries", c.Len())
	}

	mgr.mu.Lock()
	regs := len(mgr.regs)
	mgr.mu.Unlock()
	if regs != 0 {
		t.Errorf("Clear should unregister, %d registrations remain", regs)
	}

	// The cache must stay usable after Clear.
	c.Put("c", "3")
	if got, ok := c.Get("c"); !ok || got != "3" {
		t.Errorf("cache unusable after Clear, got %q (ok=%v)", got, ok)
	}
}

func TestContainsKeyAndValue(t *testing.T) {
	c, _ := newTestCache(t, nil)

	c.Put("key", "value")

	if !c.ContainsKey("key") {
		t.Error("expected ContainsKey to find key")
	}
	if c.ContainsKey("missing") {
		t.Error("ContainsKey should not find a missing key")
	}
	if !c.ContainsValue("value") {
		t.Error("expected ContainsValue to find value")
	}
	if c.ContainsValue("missing") {
		t.Error("ContainsValue should not find a missing value")
	}
}

func TestSnapshots(t *testing.T) {
	c, _ := newTestCache(t, nil)

	c.Put("a", "1")
	c.Put("b", "2")

	keys := c.Keys()
	values := c.Values()
	items := c.Items()

	if len(keys) != 2 || len(values) != 2 || len(items) != 2 {
		t.Fatalf("expected 2 of each, got keys=%d values=%d items=%d",
			len(keys), len(values), len(items))
	}
	if items["a"] != "1" || items["b"] != "2" {
		t.Errorf("unexpected items snapshot: %v", items)
	}

	// Snapshots are copies; mutating the cache must not affect them.
	c.Remove("a")
	if len(items) != 2 {
		t.Error("snapshot should be unaffected by later mutation")
	}
}

func TestGetEntry(t *testing.T) {
	c, _ := newTestCache(t, nil)

	c.Put("key", "value")
	ent, ok := c.GetEntry("key")
	if !ok {
		t.Fatal("expected entry to be present")
	}
	if ent.Key() != "key" {
		t.Errorf("expected key %q, got %q", "key", ent.Key())
	}
	if ent.Age() < 0 || ent.Age() > time.Second {
		t.Errorf("implausible entry age %v", ent.Age())
	}

	if prev := ent.SetValue("updated"); prev != "value" {
		t.Errorf("expected previous value %q, got %q", "value", prev)
	}
	if got, _ := c.Get("key"); got != "updated" {
		t.Errorf("expected %q after SetValue, got %q", "updated", got)
	}
}

func TestRefreshOnReadAccessors(t *testing.T) {
	c, _ := newTestCache(t, &Config{
		Name:          "accessors",
		RefreshOnRead: true,
		SweepInterval: time.Second,
		Timeout:       time.Second,
	})

	if !c.RefreshOnRead() {
		t.Error("expected RefreshOnRead to be true")
	}
	c.SetRefreshOnRead(false)
	if c.RefreshOnRead() {
		t.Error("expected RefreshOnRead to be false after SetRefreshOnRead")
	}
	if c.Timeout() != time.Second {
		t.Errorf("expected timeout 1s, got %v", c.Timeout())
	}
	if c.SweepInterval() != time.Second {
		t.Errorf("expected sweep interval 1s, got %v", c.SweepInterval())
	}
	if c.Name() != "accessors" {
		t.Errorf("expected name %q, got %q", "accessors", c.Name())
	}
}

func TestConfigValidation(t *testing.T) {
	log := newTestLogger(t)
	mgr := NewManager(log)

	cases := []struct {
		name string
		cfg  *Config
	}{
		{"negative sweep interval", &Config{SweepInterval: -time.Second, Timeout: time.Second}},
		{"negative timeout", &Config{SweepInterval: time.Second, Timeout: -time.Second}},
		{"negative capacity", &Config{SweepInterval: time.Second, Timeout: time.Second, InitialCapacity: -1}},
		{"negative event buffer", &Config{SweepInterval: time.Second, Timeout: time.Second, EventBuffer: -1}},
	}
	for _, tc := range cases {
		if _, err := NewWithManager[string, string](log, tc.cfg, mgr); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}

	if _, err := NewWithManager[string, string](log, nil, nil); err != ErrNilManager {
		t.Errorf("nil manager: expected ErrNilManager, got %v", err)
	}
}

func TestStats(t *testing.T) {
	c, _ := newTestCache(t, &Config{
		Name:          "stats",
		SweepInterval: 10 * time.Second,
		Timeout:       100 * time.Millisecond,
	})

	c.Put("key", "value")
	c.Get("key")     // hit
	c.Get("missing") // miss

	time.Sleep(150 * time.Millisecond)
	c.Get("key") // lazy expiry, then miss

	s := c.Stats()
	if s.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", s.Hits)
	}
	if s.Misses != 2 {
		t.Errorf("expected 2 misses, got %d", s.Misses)
	}
	if s.Expired != 1 {
		t.Errorf("expected 1 expired, got %d", s.Expired)
	}
}

func TestFlush_EvictsOnlyStale(t *testing.T) {
	c, _ := newTestCache(t, &Config{
		Name:          "flush",
		SweepInterval: 10 * time.Second,
		Timeout:       200 * time.Millisecond,
	})

	c.Put("old", "value")
	time.Sleep(250 * time.Millisecond)
	c.Put("fresh", "value")

	c.Flush()

	if c.ContainsKey("old") {
		t.Error("stale entry should have been flushed")
	}
	if !c.ContainsKey("fresh") {
		t.Error("fresh entry should have survived the flush")
	}
}
