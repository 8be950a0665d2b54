package leaselock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type row struct {
	key string
	err error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.key
	return nil
}

// memoryLocks mimics app_locks without expiry.
type memoryLocks struct {
	mu     sync.Mutex
	owners map[string]string
	fail   error
}

func newMemoryLocks() *memoryLocks {
	return &memoryLocks{owners: map[string]string{}}
}

func (m *memoryLocks) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return row{err: m.fail}
	}
	key, token := args[0].(string), args[1].(string)
	owner, held := m.owners[key]
	switch sql {
	case tryAcquireSQL:
		if held && owner != token {
			return row{err: pgx.ErrNoRows}
		}
		m.owners[key] = token
		return row{key: key}
	case renewSQL:
		if owner != token {
			return row{err: pgx.ErrNoRows}
		}
		return row{key: key}
	}
	return row{err: errors.New("unexpected query")}
}

func (m *memoryLocks) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, token := args[0].(string), args[1].(string)
	if m.owners[key] == token {
		delete(m.owners, key)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag("DELETE 0"), nil
}

func (m *memoryLocks) steal(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[key] = "someone-else"
}

func TestAcquireIsExclusive(t *testing.T) {
	locks := newMemoryLocks()
	client := New(locks)
	ctx := context.Background()

	lease, err := client.Acquire(ctx, ImportJobKey("job1"), Options{})
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}

	if _, err := client.Acquire(ctx, ImportJobKey("job1"), Options{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if lease.Context.Err() == nil {
		t.Fatal("expected lease context to be cancelled after release")
	}

	second, err := client.Acquire(ctx, ImportJobKey("job1"), Options{})
	if err != nil {
		t.Fatalf("expected lock to be free after release, got %v", err)
	}
	_ = second.Release(ctx)
}

func TestAcquireEmptyKey(t *testing.T) {
	if _, err := New(newMemoryLocks()).Acquire(context.Background(), "", Options{}); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestAcquirePropagatesDatabaseErrors(t *testing.T) {
	locks := newMemoryLocks()
	locks.fail = errors.New("connection refused")
	if _, err := New(locks).Acquire(context.Background(), "k", Options{}); err == nil || errors.Is(err, ErrBusy) {
		t.Fatalf("expected database error, got %v", err)
	}
}

func TestAcquireWaitStopsOnContext(t *testing.T) {
	locks := newMemoryLocks()
	locks.steal("k")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(locks).Acquire(ctx, "k", Options{Wait: true, WaitInterval: 10 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWithLeaseReleases(t *testing.T) {
	locks := newMemoryLocks()
	client := New(locks)

	called := false
	err := client.WithLease(context.Background(), "k", Options{}, func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("expected fn to run without error, called=%v err=%v", called, err)
	}
	if _, held := locks.owners["k"]; held {
		t.Fatal("expected lock to be released")
	}
}

func TestLostLeaseCancelsContext(t *testing.T) {
	locks := newMemoryLocks()
	client := New(locks)

	err := client.WithLease(context.Background(), "k", Options{TTL: 2 * time.Second, RenewEvery: 10 * time.Millisecond}, func(ctx context.Context) error {
		locks.steal("k")
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrLost) {
		t.Fatalf("expected ErrLost, got %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.TTL != defaultTTL || o.RenewEvery != defaultTTL/2 || o.WaitInterval != defaultWaitInterval {
		t.Fatalf("unexpected defaults: %+v", o)
	}

	o = Options{TTL: time.Second, RenewEvery: time.Hour}.withDefaults()
	if o.RenewEvery != time.Second {
		t.Fatalf("expected renew interval to be clamped, got %v", o.RenewEvery)
	}
}
