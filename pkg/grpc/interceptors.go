package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"storefront/pkg/auth"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

const (
	// TraceIDMetadataKey is the metadata key for trace ID
	TraceIDMetadataKey = "x-trace-id"
	// AuthorizationMetadataKey carries the bearer token
	AuthorizationMetadataKey = "authorization"
)

// UnaryServerInterceptor creates a server interceptor for logging, tracing, and error handling
func UnaryServerInterceptor(log *logger.Logger, timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		// Extract or generate trace ID
		traceID := metadataValue(ctx, TraceIDMetadataKey)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		ctx = logger.WithTraceIDContext(ctx, traceID)

		// Apply timeout
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp, err := handler(ctx, req)

		logFields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
		}

		if err != nil {
			// Convert domain errors to gRPC status
			st := errors.GRPCStatus(err)
			code := status.Code(st)
			logFields = append(logFields, zap.String("grpc_code", code.String()), zap.Error(err))
			log.WithContext(ctx).Warn("grpc request failed", logFields...)
			return nil, st
		}

		log.WithContext(ctx).Info("grpc request completed", logFields...)
		return resp, nil
	}
}

// UnaryAuthInterceptor verifies the bearer token in the authorization
// metadata and stores the principal in the context. Calls without a token
// proceed with no principal; handlers reject them.
func UnaryAuthInterceptor(verifier *auth.TokenVerifier) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		header := metadataValue(ctx, AuthorizationMetadataKey)
		if header == "" {
			return handler(ctx, req)
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return nil, errors.NewUnauthorized("invalid authorization metadata").WithReason("INVALID_TOKEN")
		}
		principal, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			return nil, errors.NewUnauthorized("invalid or expired token").WithReason("INVALID_TOKEN")
		}

		return handler(auth.WithPrincipal(ctx, principal), req)
	}
}

func metadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(key)
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
