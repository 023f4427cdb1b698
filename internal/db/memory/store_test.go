package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webntricks/unisearch/internal/db"
)

func TestSetGetRoundtrip(t *testing.T) {
	s := NewStore(8, time.Hour)
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("got %q, want v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := NewStore(8, time.Hour)

	_, err := s.Get(context.Background(), "absent")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("err = %v, want ErrKeyNotFound", err)
	}
}

func TestPerKeyTTLExpires(t *testing.T) {
	s := NewStore(8, time.Hour)
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("err = %v, want ErrKeyNotFound for expired key", err)
	}
}
