package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	sub, err := bus.Subscribe(DecisionSubject("u1"), 4)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	if err := bus.Publish(context.Background(), DecisionSubject("u1"), []byte(`{"stage":"greeting"}`)); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-sub.C():
		if msg.Subject != "nova.v1.decision.u1" {
			t.Errorf("subject = %s", msg.Subject)
		}
		if string(msg.Payload) != `{"stage":"greeting"}` {
			t.Errorf("payload = %s", msg.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}
}

func TestWildcardSubscription(t *testing.T) {
	bus := NewMemoryBus()
	sub, err := bus.Subscribe(DecisionWildcard(), 4)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	ctx := context.Background()
	bus.Publish(ctx, DecisionSubject("u1"), []byte("a"))
	bus.Publish(ctx, DecisionSubject("u2"), []byte("b"))

	for i := 0; i < 2; i++ {
		select {
		case <-sub.C():
		case <-time.After(time.Second):
			t.Fatalf("delivery %d missing", i)
		}
	}
}

func TestNoDeliveryAcrossUsers(t *testing.T) {
	bus := NewMemoryBus()
	sub, _ := bus.Subscribe(DecisionSubject("u1"), 4)
	defer sub.Close()

	bus.Publish(context.Background(), DecisionSubject("u2"), []byte("x"))

	select {
	case msg := <-sub.C():
		t.Fatalf("unexpected delivery: %s", msg.Subject)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewMemoryBus()
	sub, _ := bus.Subscribe(DecisionSubject("u1"), 1)
	defer sub.Close()

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			bus.Publish(ctx, DecisionSubject("u1"), []byte("x"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestCloseDuringPublishDoesNotPanic(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			sub, err := bus.Subscribe(DecisionSubject("u1"), 1)
			if err != nil {
				t.Error(err)
				return
			}
			sub.Close()
		}
	}()

	for i := 0; i < 200; i++ {
		if err := bus.Publish(ctx, DecisionSubject("u1"), []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	<-done
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := NewMemoryBus()
	sub, _ := bus.Subscribe(DecisionSubject("u1"), 1)
	if err := sub.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sub.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSubjectSanitizesDots(t *testing.T) {
	if got := DecisionSubject("user.one"); got != "nova.v1.decision.user_one" {
		t.Errorf("subject = %s", got)
	}
}
