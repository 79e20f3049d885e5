package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-reconcile"
	"github.com/goliatone/go-reconcile/tree"
)

func TestLoadReadsFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "reconcile.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "order.schema.json", cfg.Schema.Path)
	assert.Equal(t, "order-42", cfg.Document.ID)
	assert.False(t, cfg.Document.InPlace)

	require.Len(t, cfg.Sort, 2)
	assert.Equal(t, "items", cfg.Sort[0].Name)
	assert.Equal(t, "lookup", cfg.Sort[0].Engine)
	assert.Equal(t, "id", cfg.Sort[0].ItemSignature)
	assert.Equal(t, "^tags$", cfg.Sort[1].Search)
	assert.Empty(t, cfg.Sort[1].Engine)

	require.Len(t, cfg.Merge, 1)
	assert.Equal(t, "audit", cfg.Merge[0].Callback)
	assert.Equal(t, "id", cfg.Merge[0].ObjectSignature)
	assert.Equal(t, []string{"updated_at"}, cfg.Merge[0].Ignore)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Sort)
	assert.Empty(t, cfg.Merge)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("RECONCILE_LOG_LEVEL", "error")
	t.Setenv("RECONCILE_DOCUMENT_IN_PLACE", "true")

	cfg, err := Load(filepath.Join("testdata", "reconcile.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.True(t, cfg.Document.InPlace)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadDotEnvNextToConfig(t *testing.T) {
	// Registered so the value written by the .env file is restored.
	t.Setenv("RECONCILE_DOCUMENT_ID", "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reconcile.yaml"), []byte("log:\n  level: info\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RECONCILE_DOCUMENT_ID=from-dotenv\n"), 0o600))

	cfg, err := Load(filepath.Join(dir, "reconcile.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Document.ID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Sort: []SortHandlerConfig{
			{HandlerConfig: HandlerConfig{Name: "items", Search: "items"}},
			{HandlerConfig: HandlerConfig{Name: "empty"}},
		},
		Merge: []MergeHandlerConfig{
			{HandlerConfig: HandlerConfig{Name: "items", Search: "items"}},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sort[1]: search is required")
	assert.Contains(t, err.Error(), `merge[0]: duplicate handler name "items"`)
}

func TestBuildHandlersCompilesPatterns(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "reconcile.yaml"))
	require.NoError(t, err)

	sorts := &reconcile.Recorder{}
	audit := &reconcile.Recorder{}
	handlers, err := BuildHandlers(cfg, CallbackRegistry{DefaultCallback: sorts, "audit": audit}, nil)
	require.NoError(t, err)

	require.Len(t, handlers.Sort, 2)
	require.Len(t, handlers.Merge, 1)
	assert.Equal(t, "id", handlers.Sort[0].ItemSignature)
	assert.Same(t, sorts, handlers.Sort[1].Callback)
	assert.Same(t, audit, handlers.Merge[0].Callback)
	assert.Equal(t, []string{"updated_at"}, handlers.Merge[0].Ignore)

	ok, err := handlers.Sort[0].Search.Match(reconcile.PartContext{
		Lookup: "items", Path: tree.Path{"items"}, Key: "items", Depth: 1, Kind: tree.KindSequence,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = handlers.Merge[0].Search.Match(reconcile.PartContext{
		Lookup: "profiles.1", Path: tree.Path{"profiles", "1"}, Key: "1", Depth: 2, Kind: tree.KindMap,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = handlers.Merge[0].Search.Match(reconcile.PartContext{Kind: tree.KindMap})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildHandlersJoinsErrors(t *testing.T) {
	cfg := &Config{
		Sort: []SortHandlerConfig{
			{HandlerConfig: HandlerConfig{Name: "broken", Engine: "cobol", Search: "items"}},
		},
		Merge: []MergeHandlerConfig{
			{HandlerConfig: HandlerConfig{Search: "profiles", Callback: "audit"}},
		},
	}

	_, err := BuildHandlers(cfg, CallbackRegistry{DefaultCallback: &reconcile.Recorder{}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler broken")
	assert.Contains(t, err.Error(), `handler merge[0]: unknown callback "audit"`)
}

func TestBuildDrivesSession(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "reconcile.yaml"))
	require.NoError(t, err)

	recorder := &reconcile.Recorder{}
	opts, err := Build(cfg, CallbackRegistry{DefaultCallback: recorder, "audit": recorder}, nil)
	require.NoError(t, err)

	original, err := tree.ParseJSON([]byte(`{"items":[{"id":1},{"id":2}],"tags":["a"],"profiles":[{"id":"p","name":"x","updated_at":1}]}`))
	require.NoError(t, err)
	target, err := tree.ParseJSON([]byte(`{"items":[{"id":2},{"id":1}],"tags":["a"],"profiles":[{"id":"p","name":"x","updated_at":2}]}`))
	require.NoError(t, err)

	ctx := context.Background()
	session := reconcile.NewSession(opts...)
	_, err = session.AssignWithBaseline(ctx, target, original)
	require.NoError(t, err)

	report, err := session.Persist(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, report.Events)
	for _, event := range recorder.Events() {
		assert.Equal(t, reconcile.EventMove, event.Kind)
		assert.Equal(t, "items", event.Handler)
	}
	assert.Empty(t, session.InvalidHandlers())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	logger, err = NewLogger(LogConfig{Level: "debug"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
