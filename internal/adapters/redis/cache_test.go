package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "campus_catalog/internal/adapters/redis"
	"campus_catalog/internal/domain"
)

func newTestCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	in := domain.CoursesPage{Items: []domain.Course{{ID: "CS-1337", Code: "CS-1337", Title: "Computer Science I"}}}
	if err := c.Set(ctx, "courses:cs::25", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.CoursesPage
	ok, err := c.Get(ctx, "courses:cs::25", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(out.Items) != 1 || out.Items[0].Title != "Computer Science I" {
		t.Fatalf("unexpected value: %+v", out)
	}
}

func TestCache_MissAndDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var dst domain.CoursesPage
	ok, err := c.Get(ctx, "nope", &dst)
	if err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "k", domain.CoursesPage{}, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, _ = c.Get(ctx, "k", &dst)
	if ok {
		t.Fatalf("expected miss after Del")
	}
}
