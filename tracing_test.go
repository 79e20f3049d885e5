package reconcile

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	recorder := tracetest.NewSpanRecorder()
	return recorder, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
}

func spanAttribute(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestPersistRecordsSpans(t *testing.T) {
	ctx := context.Background()
	spans, provider := newRecordingTracer()
	rec := &Recorder{}
	session := NewSession(
		WithSortHandlers(itemsHandler(rec)),
		WithTracer(provider.Tracer("test")),
		WithDocumentID("order-7"),
	)
	if _, err := session.AssignWithBaseline(ctx,
		mustParse(t, `{"items":[{"id":2},{"id":1}]}`),
		mustParse(t, `{"items":[{"id":1},{"id":2}]}`),
	); err != nil {
		t.Fatalf("assign: %v", err)
	}
	report, err := session.Persist(ctx)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}

	ended := spans.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected dispatch and persist spans, got %d", len(ended))
	}
	dispatch, persist := ended[0], ended[1]
	if dispatch.Name() != "reconcile.Dispatch" || persist.Name() != "reconcile.Persist" {
		t.Fatalf("unexpected span names %q, %q", dispatch.Name(), persist.Name())
	}
	if dispatch.Parent().SpanID() != persist.SpanContext().SpanID() {
		t.Fatalf("dispatch span should be a child of the persist span")
	}
	if v, ok := spanAttribute(persist, "reconcile.run_id"); !ok || v.AsString() != report.RunID {
		t.Fatalf("persist span should carry the run id, got %v", v)
	}
	if v, ok := spanAttribute(dispatch, "reconcile.document_id"); !ok || v.AsString() != "order-7" {
		t.Fatalf("dispatch span should carry the document id, got %v", v)
	}
	if persist.Status().Code == codes.Error {
		t.Fatalf("successful persist should not set an error status")
	}
}

func TestPersistSpansRecordCallbackFailure(t *testing.T) {
	ctx := context.Background()
	spans, provider := newRecordingTracer()
	boom := errors.New("backend down")
	rec := &Recorder{Fail: func(ChangeEvent) error { return boom }}
	session := NewSession(
		WithSortHandlers(itemsHandler(rec)),
		WithTracer(provider.Tracer("test")),
	)
	if _, err := session.AssignWithBaseline(ctx,
		mustParse(t, `{"items":[{"id":1},{"id":3}]}`),
		mustParse(t, `{"items":[{"id":1}]}`),
	); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := session.Persist(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	for _, span := range spans.Ended() {
		if span.Status().Code != codes.Error {
			t.Fatalf("span %s should record the failure", span.Name())
		}
		if len(span.Events()) == 0 {
			t.Fatalf("span %s should carry the error event", span.Name())
		}
	}
}
