package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestSuite defines conformance tests runnable against any Store
// implementation.
type TestSuite struct {
	NewStore func(t *testing.T) Store
}

// RunAllTests runs every conformance test against the provided store.
func (s *TestSuite) RunAllTests(t *testing.T) {
	t.Run("MemoryCRUD", s.TestMemoryCRUD)
	t.Run("MemoryListOrder", s.TestMemoryListOrder)
	t.Run("MemoryIsolationAcrossUsers", s.TestMemoryIsolationAcrossUsers)
	t.Run("MemoryNotFound", s.TestMemoryNotFound)
	t.Run("SettingsRoundTrip", s.TestSettingsRoundTrip)
	t.Run("SettingsNotFound", s.TestSettingsNotFound)
	t.Run("ConversationAppendAndRead", s.TestConversationAppendAndRead)
	t.Run("ConversationHistoryTrim", s.TestConversationHistoryTrim)
	t.Run("ConversationDelete", s.TestConversationDelete)
	t.Run("ConcurrentAccess", s.TestConcurrentAccess)
}

// TestMemoryCRUD tests save, get, update, and delete of one memory.
func (s *TestSuite) TestMemoryCRUD(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	m := &Memory{
		ID:        "m-1",
		Content:   "Work stress keeps coming up.",
		Tags:      []string{"work", "stress"},
		CreatedAt: time.Now().UTC(),
	}
	if err := st.SaveMemory(ctx, "u1", m); err != nil {
		t.Fatalf("SaveMemory failed: %v", err)
	}

	got, err := st.GetMemory(ctx, "u1", "m-1")
	if err != nil {
		t.Fatalf("GetMemory failed: %v", err)
	}
	if got.Content != m.Content {
		t.Errorf("content = %q, want %q", got.Content, m.Content)
	}
	if len(got.Tags) != 2 {
		t.Errorf("tags = %v", got.Tags)
	}

	got.Content = "Work stress, and now the commute too."
	if err := st.SaveMemory(ctx, "u1", got); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	updated, err := st.GetMemory(ctx, "u1", "m-1")
	if err != nil {
		t.Fatalf("GetMemory after update failed: %v", err)
	}
	if updated.Content != got.Content {
		t.Errorf("updated content = %q", updated.Content)
	}

	if err := st.DeleteMemory(ctx, "u1", "m-1"); err != nil {
		t.Fatalf("DeleteMemory failed: %v", err)
	}
	if _, err := st.GetMemory(ctx, "u1", "m-1"); err == nil {
		t.Fatal("expected not found after delete")
	}
}

// TestMemoryListOrder verifies creation-time ordering.
func (s *TestSuite) TestMemoryListOrder(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"m-c", "m-a", "m-b"} {
		m := &Memory{ID: id, Content: "memory " + id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := st.SaveMemory(ctx, "u1", m); err != nil {
			t.Fatalf("SaveMemory failed: %v", err)
		}
	}

	got, err := st.ListMemories(ctx, "u1")
	if err != nil {
		t.Fatalf("ListMemories failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "m-c" || got[2].ID != "m-b" {
		t.Errorf("order = [%s %s %s], want creation order", got[0].ID, got[1].ID, got[2].ID)
	}
}

// TestMemoryIsolationAcrossUsers verifies per-user scoping.
func (s *TestSuite) TestMemoryIsolationAcrossUsers(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	st.SaveMemory(ctx, "u1", &Memory{ID: "m-1", Content: "one", CreatedAt: time.Now()})
	st.SaveMemory(ctx, "u2", &Memory{ID: "m-2", Content: "two", CreatedAt: time.Now()})

	u1, err := st.ListMemories(ctx, "u1")
	if err != nil {
		t.Fatalf("ListMemories failed: %v", err)
	}
	if len(u1) != 1 || u1[0].ID != "m-1" {
		t.Errorf("u1 memories = %v", u1)
	}
	if _, err := st.GetMemory(ctx, "u2", "m-1"); err == nil {
		t.Error("u2 can read u1's memory")
	}
}

// TestMemoryNotFound verifies typed not-found errors.
func (s *TestSuite) TestMemoryNotFound(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	_, err := st.GetMemory(ctx, "u1", "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if err := st.DeleteMemory(ctx, "u1", "missing"); !errors.As(err, &nf) {
		t.Fatalf("delete err = %v, want NotFoundError", err)
	}
}

// TestSettingsRoundTrip tests settings save-then-get.
func (s *TestSuite) TestSettingsRoundTrip(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	in := &Settings{VoiceMode: "mythic", AllowMemoryReferences: true}
	if err := st.SaveSettings(ctx, "u1", in); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, err := st.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got.VoiceMode != "mythic" || !got.AllowMemoryReferences {
		t.Errorf("settings = %+v", got)
	}
}

// TestSettingsNotFound verifies absent settings return a typed error.
func (s *TestSuite) TestSettingsNotFound(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()

	_, err := st.GetSettings(context.Background(), "nobody")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

// TestConversationAppendAndRead tests history persistence and limits.
func (s *TestSuite) TestConversationAppendAndRead(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	err := st.AppendMessages(ctx, "u1", "c1", []Message{
		{Role: "user", Content: "hey", At: now},
		{Role: "assistant", Content: "Hey.", At: now},
	})
	if err != nil {
		t.Fatalf("AppendMessages failed: %v", err)
	}
	err = st.AppendMessages(ctx, "u1", "c1", []Message{
		{Role: "user", Content: "long day today", At: now},
	})
	if err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	all, err := st.GetConversation(ctx, "u1", "c1", 0)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Content != "hey" || all[2].Content != "long day today" {
		t.Errorf("order wrong: %v", all)
	}

	tail, err := st.GetConversation(ctx, "u1", "c1", 2)
	if err != nil {
		t.Fatalf("limited GetConversation failed: %v", err)
	}
	if len(tail) != 2 || tail[0].Content != "Hey." {
		t.Errorf("tail = %v", tail)
	}

	other, err := st.GetConversation(ctx, "u1", "c2", 0)
	if err != nil {
		t.Fatalf("empty GetConversation failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unexpected history: %v", other)
	}
}

// TestConversationHistoryTrim verifies the history cap.
func (s *TestSuite) TestConversationHistoryTrim(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	msgs := make([]Message, HistoryLimit+10)
	for i := range msgs {
		msgs[i] = Message{Role: "user", Content: fmt.Sprintf("msg-%d", i), At: time.Now()}
	}
	if err := st.AppendMessages(ctx, "u1", "c1", msgs); err != nil {
		t.Fatalf("AppendMessages failed: %v", err)
	}

	got, err := st.GetConversation(ctx, "u1", "c1", 0)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(got) != HistoryLimit {
		t.Fatalf("len = %d, want %d", len(got), HistoryLimit)
	}
	if got[0].Content != "msg-10" {
		t.Errorf("oldest kept = %q, want msg-10", got[0].Content)
	}
}

// TestConversationDelete verifies delete drops only the named conversation.
func (s *TestSuite) TestConversationDelete(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	st.AppendMessages(ctx, "u1", "c1", []Message{{Role: "user", Content: "hey", At: now}})
	st.AppendMessages(ctx, "u1", "c2", []Message{{Role: "user", Content: "hello", At: now}})

	if err := st.DeleteConversation(ctx, "u1", "c1"); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}

	gone, err := st.GetConversation(ctx, "u1", "c1", 0)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(gone) != 0 {
		t.Errorf("history survived delete: %v", gone)
	}

	kept, err := st.GetConversation(ctx, "u1", "c2", 0)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("other conversation lost: %v", kept)
	}

	if err := st.DeleteConversation(ctx, "u1", "missing"); err != nil {
		t.Errorf("deleting unknown conversation should be a no-op, got %v", err)
	}
}

// TestConcurrentAccess exercises parallel writers and readers.
func (s *TestSuite) TestConcurrentAccess(t *testing.T) {
	st := s.NewStore(t)
	defer st.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", i%3)
			m := &Memory{
				ID:        fmt.Sprintf("m-%d", i),
				Content:   fmt.Sprintf("memory %d", i),
				CreatedAt: time.Now().UTC(),
			}
			if err := st.SaveMemory(ctx, userID, m); err != nil {
				t.Errorf("SaveMemory failed: %v", err)
			}
			if _, err := st.ListMemories(ctx, userID); err != nil {
				t.Errorf("ListMemories failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for i := 0; i < 3; i++ {
		got, err := st.ListMemories(ctx, fmt.Sprintf("u%d", i))
		if err != nil {
			t.Fatalf("ListMemories failed: %v", err)
		}
		total += len(got)
	}
	if total != 10 {
		t.Errorf("total memories = %d, want 10", total)
	}
}
