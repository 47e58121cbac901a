package grpcclient

import (
	"context"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/resilience"
)

// ocrService is the server-side handler type for the test service.
type ocrService interface {
	extract(ctx context.Context, img []byte) (string, error)
}

type fakeOCR struct {
	calls atomic.Int32
	fn    func(n int32, img []byte) (string, error)
}

func (f *fakeOCR) extract(_ context.Context, img []byte) (string, error) {
	return f.fn(f.calls.Add(1), img)
}

var ocrDesc = grpc.ServiceDesc{
	ServiceName: "screenwatch.OCRService",
	HandlerType: (*ocrService)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "ExtractText",
		Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
			in := &wrapperspb.BytesValue{}
			if err := dec(in); err != nil {
				return nil, err
			}
			text, err := srv.(ocrService).extract(ctx, in.GetValue())
			if err != nil {
				return nil, err
			}
			return wrapperspb.String(text), nil
		},
	}},
}

func startServer(t *testing.T, svc *fakeOCR, serving healthpb.HealthCheckResponse_ServingStatus) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Retry.BaseDelay = 1
	cfg.Retry.MaxDelay = 1
	return startServerWithConfig(t, svc, serving, cfg)
}

func startServerWithConfig(t *testing.T, svc *fakeOCR, serving healthpb.HealthCheckResponse_ServingStatus, cfg Config) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&ocrDesc, svc)
	hs := health.NewServer()
	hs.SetServingStatus("", serving)
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewWithConfig("passthrough:///bufnet", cfg, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestExtractText(t *testing.T) {
	svc := &fakeOCR{fn: func(_ int32, img []byte) (string, error) {
		return "Strike Rate: " + strings.ToUpper(string(img)), nil
	}}
	c := startServer(t, svc, healthpb.HealthCheckResponse_SERVING)

	text, err := c.ExtractText(context.Background(), []byte("png"))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "Strike Rate: PNG" {
		t.Errorf("ExtractText() = %q", text)
	}
}

func TestExtractTextRetriesTransient(t *testing.T) {
	svc := &fakeOCR{fn: func(n int32, _ []byte) (string, error) {
		if n == 1 {
			return "", status.Error(codes.Unavailable, "warming up")
		}
		return "ok", nil
	}}
	c := startServer(t, svc, healthpb.HealthCheckResponse_SERVING)

	text, err := c.ExtractText(context.Background(), []byte("x"))
	if err != nil || text != "ok" {
		t.Fatalf("ExtractText() = %q, %v", text, err)
	}
	if got := svc.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestExtractTextPermanentError(t *testing.T) {
	svc := &fakeOCR{fn: func(int32, []byte) (string, error) {
		return "", errors.New(errors.OCRInvalidImage, "cannot decode")
	}}
	c := startServer(t, svc, healthpb.HealthCheckResponse_SERVING)

	_, err := c.ExtractText(context.Background(), []byte("x"))
	if !errors.IsCode(err, errors.OCRInvalidImage) {
		t.Errorf("ExtractText() error = %v, want OCR_INVALID_IMAGE", err)
	}
	if got := svc.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestExtractTextEmptyImage(t *testing.T) {
	c := startServer(t, &fakeOCR{}, healthpb.HealthCheckResponse_SERVING)

	if _, err := c.ExtractText(context.Background(), nil); !errors.IsCode(err, errors.OCRInvalidImage) {
		t.Errorf("ExtractText(nil) error = %v, want OCR_INVALID_IMAGE", err)
	}
}

func TestExtractTextReachesServerAfterReset(t *testing.T) {
	svc := &fakeOCR{fn: func(n int32, _ []byte) (string, error) {
		if n == 1 {
			return "", status.Error(codes.Unavailable, "restarting")
		}
		return "ok", nil
	}}
	cfg := DefaultConfig()
	cfg.Breaker = resilience.Config{Name: "inference", Threshold: 1, ResetTimeout: 5 * time.Millisecond, HalfOpenSuccesses: 1}
	cfg.Retry.MaxRetries = 0
	c := startServerWithConfig(t, svc, healthpb.HealthCheckResponse_SERVING, cfg)

	if _, err := c.ExtractText(context.Background(), []byte("x")); err == nil {
		t.Fatal("first call should fail")
	}
	if _, err := c.ExtractText(context.Background(), []byte("x")); !errors.IsCode(err, errors.OCRUnavailable) {
		t.Errorf("ExtractText() while open = %v, want OCR_UNAVAILABLE", err)
	}
	if got := svc.calls.Load(); got != 1 {
		t.Fatalf("calls while open = %d, want 1", got)
	}

	time.Sleep(10 * time.Millisecond)
	text, err := c.ExtractText(context.Background(), []byte("x"))
	if err != nil || text != "ok" {
		t.Fatalf("ExtractText() after reset = %q, %v", text, err)
	}
	if c.Breaker().State() != resilience.Closed {
		t.Errorf("breaker state = %s, want closed", c.Breaker().State())
	}
}

func TestHealthy(t *testing.T) {
	c := startServer(t, &fakeOCR{}, healthpb.HealthCheckResponse_SERVING)
	if err := c.Healthy(context.Background()); err != nil {
		t.Errorf("Healthy() = %v, want nil", err)
	}

	down := startServer(t, &fakeOCR{}, healthpb.HealthCheckResponse_NOT_SERVING)
	if err := down.Healthy(context.Background()); !errors.IsCode(err, errors.OCRUnavailable) {
		t.Errorf("Healthy() = %v, want OCR_UNAVAILABLE", err)
	}
}
