package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-sites/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if fields == nil {
		fields = map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "sites.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	// Ensure WithContext/WithFields do not panic.
	ctx := context.Background()
	logger = logger.WithContext(ctx)
	logger = WithFields(logger, map[string]any{"foo": "bar"})
	logger.Debug("noop")
}

func TestSitesModuleLoggers(t *testing.T) {
	cases := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		projectsModule:   ProjectsLogger,
		pagesModule:      PagesLogger,
		resolverModule:   ResolverLogger,
		navigationModule: NavigationLogger,
		leadsModule:      LeadsLogger,
		httpModule:       HTTPLogger,
		storageModule:    StorageLogger,
		provisionModule:  ProvisionLogger,
		rootModule:       func(p interfaces.LoggerProvider) interfaces.Logger { return ModuleLogger(p, " ") },
	}
	for module, build := range cases {
		rec := &recordingLogger{}
		provider := &stubProvider{logger: rec}

		build(provider).Info("ready")

		if len(provider.requested) != 1 || provider.requested[0] != module {
			t.Fatalf("expected provider asked for %s, got %v", module, provider.requested)
		}
		if len(rec.fields) != 1 || rec.fields[0]["module"] != module {
			t.Fatalf("expected module field %s, got %v", module, rec.fields)
		}
	}
}

func TestWithPageContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}

	_ = WithPageContext(rec, "p-1", "  ", "es")

	if len(rec.fields) != 1 {
		t.Fatalf("expected a single WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got[FieldProjectID] != "p-1" || got[FieldLocale] != "es" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got[fieldPageSlug]; ok {
		t.Fatalf("expected blank slug to be skipped, got %v", got)
	}
}
