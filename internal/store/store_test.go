package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dkeye/LiveSession/internal/config"
	"github.com/dkeye/LiveSession/internal/domain"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	st, err := OpenRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  newRedisStore(t),
	}
}

func TestStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			in, _ := domain.NewSession("abcd1234", "https://x.test/session/abcd1234")
			created, err := st.Create(ctx, in)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
				t.Fatalf("timestamps not stamped: %+v", created)
			}

			got, err := st.FindByIdentifier(ctx, "abcd1234")
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if got.Identifier != in.Identifier || got.ViewingURL != in.ViewingURL || got.Kind != domain.KindAdmin {
				t.Fatalf("find = %+v", got)
			}
			if !got.CreatedAt.Equal(created.CreatedAt) {
				t.Fatalf("createdAt %s != %s", got.CreatedAt, created.CreatedAt)
			}
		})
	}
}

func TestStoreRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s, _ := domain.NewSession("dup00001", "https://x.test/session/dup00001")
			if _, err := st.Create(ctx, s); err != nil {
				t.Fatalf("first create: %v", err)
			}
			s.ViewingURL = "https://other.test/session/dup00001"
			if _, err := st.Create(ctx, s); !errors.Is(err, domain.ErrDuplicateIdentifier) {
				t.Fatalf("second create err = %v, want ErrDuplicateIdentifier", err)
			}
			got, err := st.FindByIdentifier(ctx, "dup00001")
			if err != nil {
				t.Fatal(err)
			}
			if got.ViewingURL != "https://x.test/session/dup00001" {
				t.Fatalf("original record overwritten: %+v", got)
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.FindByIdentifier(context.Background(), "missing1"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreConcurrentCollision(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					s, _ := domain.NewSession("race0001", "u")
					if _, err := st.Create(ctx, s); err == nil {
						wins.Add(1)
					} else if !errors.Is(err, domain.ErrDuplicateIdentifier) {
						t.Errorf("unexpected err: %v", err)
					}
				}()
			}
			wg.Wait()
			if wins.Load() != 1 {
				t.Fatalf("%d creates succeeded, want exactly 1", wins.Load())
			}
		})
	}
}

func TestOpenMemory(t *testing.T) {
	st, err := Open(context.Background(), config.StoreConfig{Driver: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*MemoryStore); !ok {
		t.Fatalf("got %T", st)
	}
	if _, err := Open(context.Background(), config.StoreConfig{Driver: "mongo"}); err == nil {
		t.Fatal("unknown driver should fail")
	}
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	st, err := OpenRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	mr.Close()

	s, _ := domain.NewSession("down0001", "u")
	_, err = st.Create(context.Background(), s)
	if err == nil || errors.Is(err, domain.ErrDuplicateIdentifier) {
		t.Fatalf("err = %v, want connection error", err)
	}
}
