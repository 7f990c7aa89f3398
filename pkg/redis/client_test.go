package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type fakeCmdable struct {
	values map[string]string
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{values: map[string]string{}}
}

func (f *fakeCmdable) Ping(ctx context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", nil)
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *goredis.StringCmd {
	value, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(value, nil)
}

func (f *fakeCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *goredis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	f.values[key] = value.(string)
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func testClient() (*Client, *fakeCmdable) {
	fake := newFakeCmdable()
	return &Client{store: fake}, fake
}

func TestClientRoundTrip(t *testing.T) {
	client, _ := testClient()
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := client.Get(ctx, "k")
	if err != nil || value != "v" {
		t.Fatalf("Get = %q, %v", value, err)
	}

	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetNXFirstWriterWins(t *testing.T) {
	client, _ := testClient()
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "k", "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX = %v, %v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "second", time.Minute)
	if err != nil || ok {
		t.Fatalf("second SetNX = %v, %v", ok, err)
	}

	value, err := client.Get(ctx, "k")
	if err != nil || value != "first" {
		t.Fatalf("Get = %q, %v", value, err)
	}
}

func TestIdempotencyKeyNamespacing(t *testing.T) {
	client, _ := testClient()

	key := client.IdempotencyKey("cashier|POST|/api/v1/tables/4/checkout", "abc-123")
	want := "pos:idempotency:cashier|POST|/api/v1/tables/4/checkout:abc-123"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
}

func TestUninitializedClient(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from nil client")
	}
	if client.Close() != nil {
		t.Fatalf("Close on nil client must be a no-op")
	}
}
