package zaplogger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-sites/internal/logging"
)

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNewProviderRejectsUnknownLevel(t *testing.T) {
	if _, err := NewProvider(Config{Level: "loud"}); err == nil {
		t.Fatal("expected invalid level error")
	}
}

func TestAdapterCarriesFieldsAndContext(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	provider := NewProviderFromLogger(zap.New(core))

	logger := logging.ModuleLogger(provider, "sites.navigation")
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "r-1"})
	logger.WithContext(ctx).Warn("navigation.cross_locale", "item_locale", "es")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "sites.navigation" {
		t.Fatalf("expected named logger, got %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["module"] != "sites.navigation" || fields["request_id"] != "r-1" || fields["item_locale"] != "es" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
