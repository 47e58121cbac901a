package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestIDLengths(t *testing.T) {
	if id := newTraceID(); len(id) != 32 {
		t.Errorf("trace ID should be 32 chars, got %d", len(id))
	}
	if id := newSpanID(); len(id) != 16 {
		t.Errorf("span ID should be 16 chars, got %d", len(id))
	}
}

func TestIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newTraceID()
		if seen[id] {
			t.Fatal("generated duplicate trace ID")
		}
		seen[id] = true
	}
}

func TestNewChild(t *testing.T) {
	parent := New()
	child := NewChild(parent)

	if child.TraceID != parent.TraceID {
		t.Error("child should inherit trace ID")
	}
	if child.SpanID == parent.SpanID {
		t.Error("child should have new span ID")
	}
	if child.ParentSpanID != parent.SpanID {
		t.Error("child's parent should be parent's span ID")
	}
}

func TestEnsureContext(t *testing.T) {
	ctx, tc := EnsureContext(context.Background())
	again, tc2 := EnsureContext(ctx)
	if tc != tc2 || again != ctx {
		t.Error("EnsureContext should reuse an existing trace")
	}
}

func TestStartSpan(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "cycle")
	if root.Ctx.ParentSpanID != "" {
		t.Error("root span should have no parent")
	}

	_, child := StartSpan(ctx, "recognize")
	if child.Ctx.TraceID != root.Ctx.TraceID {
		t.Error("child span should share the trace ID")
	}
	if child.Ctx.ParentSpanID != root.Ctx.SpanID {
		t.Error("child span should point at root")
	}

	if child.Duration() != 0 {
		t.Error("running span should report zero duration")
	}
	child.SetAttr("chars", 12)
	child.End()
	if child.Duration() < 0 || child.EndTime.IsZero() {
		t.Error("ended span should have an end time")
	}
}

func TestUnaryClientInterceptor(t *testing.T) {
	tc := New()
	ctx := WithContext(context.Background(), tc)

	var got metadata.MD
	invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		got, _ = metadata.FromOutgoingContext(ctx)
		return nil
	}
	if err := UnaryClientInterceptor()(ctx, "/ocr/Recognize", nil, nil, nil, invoker); err != nil {
		t.Fatal(err)
	}
	if v := got.Get(TraceIDKey); len(v) != 1 || v[0] != tc.TraceID {
		t.Errorf("trace id metadata = %v, want %s", v, tc.TraceID)
	}
}

func TestMiddlewareContinuesTrace(t *testing.T) {
	var seen Context
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	req.Header.Set(TraceIDKey, "abc")
	req.Header.Set(SpanIDKey, "parent")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen.TraceID != "abc" || seen.ParentSpanID != "parent" {
		t.Errorf("unexpected trace context %+v", seen)
	}
	if rec.Header().Get(TraceIDKey) != "abc" {
		t.Error("response should echo trace id")
	}
}
