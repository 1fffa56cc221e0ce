package busclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
)

func TestMemory_PublishSubscribe_WildcardMatches(t *testing.T) {
	b := busclient.NewMemory()
	defer b.Close()

	sub, err := b.Subscribe("sensor.*.measurement")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := b.Publish("sensor.mash_tun.measurement", []byte("42")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if string(msg.Data) != "42" {
		t.Fatalf("got %q, want 42", msg.Data)
	}
}

func TestMemory_MultiTokenWildcard(t *testing.T) {
	b := busclient.NewMemory()
	defer b.Close()

	sub, err := b.Subscribe("command.>")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := b.Publish("command.start_controller", []byte("{}")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, ok := sub.TryNext(); !ok {
		t.Fatal("expected a pending message on command.>")
	}
}

func TestMemory_RequestReply(t *testing.T) {
	b := busclient.NewMemory()
	defer b.Close()

	sub, err := b.Subscribe("controller.mash.set_target")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		msg, err := sub.Next(ctx)
		if err != nil {
			return
		}
		_ = b.Publish(msg.Reply, []byte("ok"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := b.Request(ctx, "controller.mash.set_target", []byte("50"), 500*time.Millisecond)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if string(reply.Data) != "ok" {
		t.Fatalf("got %q, want ok", reply.Data)
	}
}

func TestMemory_RequestTimesOutWithoutResponder(t *testing.T) {
	b := busclient.NewMemory()
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := b.Request(ctx, "controller.nobody.set_target", []byte("50"), 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}
