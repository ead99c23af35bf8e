package storage

import (
	"context"
	"errors"
	"testing"
)

type quoteRequest struct{}
type navItem struct{}

type prefixRecorder struct {
	prefixes []string
	err      error
}

func (p *prefixRecorder) GetOrFetch(ctx context.Context, _ string, fetchFn any) (any, error) {
	return fetchFn.(func(context.Context) (any, error))(ctx)
}

func (p *prefixRecorder) Delete(context.Context, string) error { return nil }

func (p *prefixRecorder) DeleteByPrefix(_ context.Context, prefix string) error {
	p.prefixes = append(p.prefixes, prefix)
	return p.err
}

func (p *prefixRecorder) InvalidateKeys(context.Context, []string) error { return nil }

func TestCacheNamespaceFollowsModelTypeName(t *testing.T) {
	cases := map[string]string{
		CacheNamespace[navItem]():       "nav_item",
		CacheNamespace[*quoteRequest](): "quote_request",
		CacheNamespace[quoteRequest]():  "quote_request",
		snakeCase("HTTPRoute"):          "http_route",
		snakeCase("Page2Section"):       "page2_section",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestCacheInvalidatorClearsEveryNamespaceOnce(t *testing.T) {
	rec := &prefixRecorder{}
	inv := NewCacheInvalidator(rec, "page", "section").With("item", "page", " ")

	if err := inv.Invalidate(context.Background()); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	want := []string{"page::", "section::", "item::"}
	if len(rec.prefixes) != len(want) {
		t.Fatalf("expected %v, got %v", want, rec.prefixes)
	}
	for i := range want {
		if rec.prefixes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, rec.prefixes)
		}
	}
}

func TestCacheInvalidatorWithoutServiceIsNoop(t *testing.T) {
	inv := NewCacheInvalidator(nil, "page").With("item")
	if inv.Enabled() || len(inv.Prefixes()) != 0 {
		t.Fatalf("expected disabled invalidator, got %v", inv.Prefixes())
	}
	if err := inv.Invalidate(context.Background()); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
}

func TestCacheInvalidatorStopsOnError(t *testing.T) {
	boom := errors.New("cache down")
	rec := &prefixRecorder{err: boom}
	inv := NewCacheInvalidator(rec, "page", "section")
	if err := inv.Invalidate(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected cache error, got %v", err)
	}
	if len(rec.prefixes) != 1 {
		t.Fatalf("expected to stop after first prefix, got %v", rec.prefixes)
	}
}
