package storage

import (
	"context"
	"reflect"
	"strings"
	"unicode"

	cache "github.com/goliatone/go-repository-cache/cache"
)

// CacheNamespace returns the key namespace go-repository-cache uses for
// repositories of T: the snake_case name of the model type.
func CacheNamespace[T any]() string {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return snakeCase(typ.Name())
}

// CachePrefix turns a namespace into the prefix matching every key in it.
func CachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}

// CacheInvalidator drops every cached entry under a fixed set of namespaces.
// The zero value is a no-op, which is what repositories use without a cache.
type CacheInvalidator struct {
	service  cache.CacheService
	prefixes []string
}

// NewCacheInvalidator returns an invalidator for namespaces. A nil service
// yields the no-op invalidator.
func NewCacheInvalidator(service cache.CacheService, namespaces ...string) CacheInvalidator {
	if service == nil {
		return CacheInvalidator{}
	}
	inv := CacheInvalidator{service: service}
	return inv.With(namespaces...)
}

// With returns a copy that also clears namespaces.
func (c CacheInvalidator) With(namespaces ...string) CacheInvalidator {
	if c.service == nil {
		return c
	}
	prefixes := make([]string, 0, len(c.prefixes)+len(namespaces))
	prefixes = append(prefixes, c.prefixes...)
	for _, ns := range namespaces {
		prefix := CachePrefix(strings.TrimSpace(ns))
		if prefix == "" || containsString(prefixes, prefix) {
			continue
		}
		prefixes = append(prefixes, prefix)
	}
	return CacheInvalidator{service: c.service, prefixes: prefixes}
}

// Enabled reports whether a cache service is attached.
func (c CacheInvalidator) Enabled() bool {
	return c.service != nil
}

// Prefixes lists the key prefixes cleared by Invalidate.
func (c CacheInvalidator) Prefixes() []string {
	return append([]string(nil), c.prefixes...)
}

// Invalidate clears every configured prefix, stopping at the first error.
func (c CacheInvalidator) Invalidate(ctx context.Context) error {
	if c.service == nil {
		return nil
	}
	for _, prefix := range c.prefixes {
		if err := c.service.DeleteByPrefix(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (nextLower && unicode.IsUpper(prev)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
