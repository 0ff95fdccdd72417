package cooldown

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreGetAbsent(t *testing.T) {
	s := NewMemoryStore()
	_, found, err := s.Get(context.Background(), Key{"u1", "c1", StageReflection})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() on empty store should report absent")
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	key := Key{"u1", "c1", StageReflection}
	want := Entry{LastAt: time.Now().UTC(), Signature: "i'm so tired today"}

	if err := s.Put(ctx, key, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, found, err := s.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v, %v", got, found, err)
	}
	if got.Signature != want.Signature || !got.LastAt.Equal(want.LastAt) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Put(ctx, Key{"u1", "c1", StageReflection}, Entry{Signature: "a"})
	_ = s.Put(ctx, Key{"u1", "c1", StageContinuity}, Entry{MemoryID: "m1"})
	_ = s.Put(ctx, Key{"u2", "c1", StageReflection}, Entry{Signature: "b"})

	got, _, _ := s.Get(ctx, Key{"u1", "c1", StageReflection})
	if got.Signature != "a" || got.MemoryID != "" {
		t.Errorf("reflection entry contaminated: %+v", got)
	}
	got, _, _ = s.Get(ctx, Key{"u1", "c1", StageContinuity})
	if got.MemoryID != "m1" {
		t.Errorf("continuity entry contaminated: %+v", got)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := Key{fmt.Sprintf("u%d", n%8), "c1", StageReflection}
			_ = s.Put(ctx, key, Entry{Signature: fmt.Sprintf("s%d", n)})
			_, _, _ = s.Get(ctx, key)
		}(i)
	}
	wg.Wait()
}
