// Package auth authenticates gRPC callers by HMAC-hashed API keys and
// attaches the owning tenant to the request context.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MetadataKey is the gRPC metadata entry carrying the API key.
const MetadataKey = "x-api-key"

// lastUsedInterval throttles last_used_at writes for busy keys.
const lastUsedInterval = time.Minute

// healthService is exempt from authentication so probes need no key.
const healthService = "/grpc.health.v1.Health/"

type contextKey string

const tenantIDKey = contextKey("tenant_id")

// Queries is the subset of *db.Queries used for key lookup.
type Queries interface {
	Get(name string, dest interface{}, args ...interface{}) error
	Exec(name string, args ...interface{}) (sql.Result, error)
}

// Authenticator resolves API keys to tenants.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
	now     func() time.Time
}

// NewAuthenticator creates an authenticator over the configured HMAC
// secrets, keyed by secret ID.
func NewAuthenticator(secrets map[string][]byte, queries Queries) *Authenticator {
	return &Authenticator{
		secrets: secrets,
		queries: queries,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate returns the tenant owning apiKey.
func (a *Authenticator) Authenticate(apiKey string) (string, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}
	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	var key struct {
		APIKeyID   string       `db:"api_key_id"`
		TenantID   string       `db:"tenant_id"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	}
	err = a.queries.Get("get-api-key-by-hash", &key, ComputeHMAC(secret, apiKey))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if key.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	now := a.now()
	if !key.LastUsedAt.Valid || now.Sub(key.LastUsedAt.Time) > lastUsedInterval {
		// Best effort; a failed touch must not fail the request.
		_, _ = a.queries.Exec("update-last-used", now, key.APIKeyID)
	}

	return key.TenantID, nil
}

// UnaryInterceptor authenticates every call except health checks.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthService) {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		keys := md.Get(MetadataKey)
		if len(keys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		tenantID, err := a.Authenticate(keys[0])
		switch {
		case err == nil:
			return handler(WithTenantID(ctx, tenantID), req)
		case errors.Is(err, ErrKeyRevoked):
			return nil, status.Error(codes.PermissionDenied, err.Error())
		case errors.Is(err, ErrUnavailable):
			return nil, status.Error(codes.Unavailable, ErrUnavailable.Error())
		default:
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
	}
}

// WithTenantID returns ctx carrying tenantID.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantIDFromContext returns the authenticated tenant, or "" if none.
func TenantIDFromContext(ctx context.Context) string {
	if tenantID, ok := ctx.Value(tenantIDKey).(string); ok {
		return tenantID
	}
	return ""
}
