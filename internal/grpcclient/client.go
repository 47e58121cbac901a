// Package grpcclient provides a client for a remote OCR inference server.
package grpcclient

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/resilience"
	"github.com/GriffinCanCode/screenwatch/internal/trace"
)

// Client talks to the inference server.
type Client struct {
	conn    *grpc.ClientConn
	health  healthpb.HealthClient
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
}

// Config tunes the client's failure handling.
type Config struct {
	Breaker resilience.Config
	Retry   resilience.RetryConfig
}

// DefaultConfig returns the stock breaker and retry settings.
func DefaultConfig() Config {
	return Config{
		Breaker: resilience.DefaultConfig("inference"),
		Retry:   resilience.DefaultRetryConfig(),
	}
}

// New creates a client for addr with DefaultConfig.
func New(addr string, opts ...grpc.DialOption) (*Client, error) {
	return NewWithConfig(addr, DefaultConfig(), opts...)
}

// NewWithConfig creates a client for addr. Extra dial options are appended
// after the defaults, so tests can swap the dialer.
func NewWithConfig(addr string, cfg Config, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                DefaultKeepaliveTime,
			Timeout:             DefaultKeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(MaxImageBytes)),
		grpc.WithUnaryInterceptor(trace.UnaryClientInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, errors.OCRUnavailable, "dial inference server %s", addr)
	}

	return &Client{
		conn:    conn,
		health:  healthpb.NewHealthClient(conn),
		breaker: resilience.New(cfg.Breaker),
		retry:   cfg.Retry,
	}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Breaker exposes the client's circuit breaker state.
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// ExtractText sends a PNG to the server and returns the recognized text.
func (c *Client) ExtractText(ctx context.Context, png []byte) (string, error) {
	if len(png) == 0 {
		return "", errors.New(errors.OCRInvalidImage, "empty image")
	}
	if err := c.breaker.Allow(); err != nil {
		return "", errors.Wrap(err, errors.OCRUnavailable, "inference server unavailable")
	}

	var text string
	err := resilience.Retry(ctx, c.retry, func() error {
		out := &wrapperspb.StringValue{}
		if err := c.conn.Invoke(ctx, OCRMethod, wrapperspb.Bytes(png), out); err != nil {
			return errors.FromGRPCError(err)
		}
		text = out.GetValue()
		return nil
	})
	if err != nil {
		if resilience.IsTransient(err) {
			c.breaker.Failure()
		}
		return "", err
	}
	c.breaker.Success()
	return text, nil
}

// Healthy checks the server's standard health service.
func (c *Client) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return errors.FromGRPCError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		slog.Warn("inference server not serving", "status", resp.GetStatus().String())
		return errors.Newf(errors.OCRUnavailable, "inference server status %s", resp.GetStatus())
	}
	return nil
}
