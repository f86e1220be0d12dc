package services

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/metrics"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/repository"
)

// StoreFinder looks up a store by subdomain. Both the store repository and
// the redis-backed subdomain cache satisfy it.
type StoreFinder interface {
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Store, error)
}

// TokenParser verifies a bearer token and returns its subject
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

// TenantResolver maps an inbound request to the store it belongs to
type TenantResolver struct {
	stores   StoreFinder
	users    repository.UserRepository
	tokens   TokenParser
	reserved map[string]struct{}
	metrics  *metrics.Metrics
	logger   *logrus.Entry
}

// NewTenantResolver creates a new tenant resolver
func NewTenantResolver(
	stores StoreFinder,
	users repository.UserRepository,
	tokens TokenParser,
	reservedSubdomains []string,
	m *metrics.Metrics,
	logger *logrus.Entry,
) *TenantResolver {
	reserved := make(map[string]struct{}, len(reservedSubdomains))
	for _, s := range reservedSubdomains {
		reserved[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return &TenantResolver{
		stores:   stores,
		users:    users,
		tokens:   tokens,
		reserved: reserved,
		metrics:  m,
		logger:   logger.WithField("component", "tenant_resolver"),
	}
}

// Resolve tries the subdomain first and the bearer token second. A nil
// result means no tenant could be resolved and the request must be rejected.
func (r *TenantResolver) Resolve(ctx context.Context, host, authorization string) *models.TenantContext {
	if tc := r.ResolveSubdomain(ctx, host); tc != nil {
		return tc
	}
	return r.ResolveToken(ctx, authorization)
}

// ResolveSubdomain resolves an active store from the Host header. The
// resulting context acts as the store owner.
func (r *TenantResolver) ResolveSubdomain(ctx context.Context, host string) *models.TenantContext {
	subdomain := r.Subdomain(host)
	if subdomain == "" {
		return nil
	}

	store, err := r.stores.GetBySubdomain(ctx, subdomain)
	if err != nil {
		r.logLookupError(err, "subdomain", subdomain)
		r.metrics.RecordResolution(string(models.SourceSubdomain), false)
		return nil
	}
	if !store.IsActive {
		r.metrics.RecordResolution(string(models.SourceSubdomain), false)
		return nil
	}

	r.metrics.RecordResolution(string(models.SourceSubdomain), true)
	return &models.TenantContext{
		StoreID:  store.ID,
		UserID:   store.OwnerID,
		UserRole: models.RoleStoreOwner,
		Store:    store.Snapshot(),
		Source:   models.SourceSubdomain,
	}
}

// ResolveToken resolves the caller's own active store from a bearer token.
// The context carries the user's real role.
func (r *TenantResolver) ResolveToken(ctx context.Context, authorization string) *models.TenantContext {
	token := BearerToken(authorization)
	if token == "" {
		return nil
	}

	user := r.Authenticate(ctx, token)
	if user == nil || user.Store == nil || !user.Store.IsActive {
		r.metrics.RecordResolution(string(models.SourceToken), false)
		return nil
	}

	r.metrics.RecordResolution(string(models.SourceToken), true)
	return &models.TenantContext{
		StoreID:  user.Store.ID,
		UserID:   user.ID,
		UserRole: user.Role,
		Store:    user.Store.Snapshot(),
		Source:   models.SourceToken,
	}
}

// Authenticate returns the token's user with their store preloaded, or nil
// when the token is invalid or the user does not exist
func (r *TenantResolver) Authenticate(ctx context.Context, token string) *models.User {
	userID, err := r.tokens.Parse(token)
	if err != nil {
		return nil
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		r.logLookupError(err, "user_id", userID.String())
		return nil
	}
	return user
}

// Subdomain extracts the tenant subdomain from a Host header using the
// resolver's reserved set
func (r *TenantResolver) Subdomain(host string) string {
	return extractSubdomain(host, r.reserved)
}

func (r *TenantResolver) logLookupError(err error, field, value string) {
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	r.logger.WithError(err).WithField(field, value).Warn("tenant lookup failed")
}

// ExtractSubdomain returns the tenant subdomain of a Host header, or "" when
// the host carries none. Malformed hosts yield "".
func ExtractSubdomain(host string, reservedSubdomains []string) string {
	reserved := make(map[string]struct{}, len(reservedSubdomains))
	for _, s := range reservedSubdomains {
		reserved[strings.ToLower(s)] = struct{}{}
	}
	return extractSubdomain(host, reserved)
}

func extractSubdomain(host string, reserved map[string]struct{}) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || strings.HasPrefix(host, "[") {
		return ""
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}

	labels := strings.Split(host, ".")
	for _, label := range labels {
		if !isDNSLabel(label) {
			return ""
		}
	}

	minLabels := 3
	if labels[len(labels)-1] == "localhost" {
		minLabels = 2
	}
	if len(labels) < minLabels {
		return ""
	}

	candidate := labels[0]
	if _, ok := reserved[candidate]; ok {
		return ""
	}
	return candidate
}

func isDNSLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, c := range label {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(authorization string) string {
	parts := strings.SplitN(strings.TrimSpace(authorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
