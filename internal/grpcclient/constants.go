package grpcclient

import "time"

// Client configuration defaults.
const (
	// OCRMethod is the unary method serving text extraction. The request is a
	// google.protobuf.BytesValue holding a PNG, the response a StringValue.
	OCRMethod = "/screenwatch.OCRService/ExtractText"

	DefaultKeepaliveTime    = 10 * time.Second
	DefaultKeepaliveTimeout = 3 * time.Second

	HealthCheckTimeout = 2 * time.Second

	// MaxImageBytes bounds request size; upscaled full-screen PNGs are large.
	MaxImageBytes = 32 << 20
)
