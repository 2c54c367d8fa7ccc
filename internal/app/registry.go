package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dkeye/LiveSession/internal/domain"
	"github.com/dkeye/LiveSession/internal/metrics"
	"github.com/dkeye/LiveSession/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidOrigin = errors.New("invalid base origin")

// NewToken returns an 8 character URL-safe identifier built from the random
// part of a v4 uuid (48 bits). It is a capability, not a credential.
func NewToken() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:6])
}

type RegistryOption func(*Registry)

func WithTokenFunc(f func() string) RegistryOption {
	return func(r *Registry) { r.newToken = f }
}

func WithMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// Registry creates and looks up sessions on top of a store.Store.
type Registry struct {
	store    store.Store
	newToken func() string
	metrics  *metrics.Metrics
}

func NewRegistry(st store.Store, opts ...RegistryOption) *Registry {
	r := &Registry{store: st, newToken: NewToken}
	for _, o := range opts {
		o(r)
	}
	return r
}

// StartSession allocates an identifier, computes the viewing URL under
// baseOrigin and persists the record. Nothing is returned unless the store
// accepted it.
func (r *Registry) StartSession(ctx context.Context, baseOrigin string) (domain.Session, error) {
	base, err := normalizeOrigin(baseOrigin)
	if err != nil {
		return domain.Session{}, err
	}

	id := r.newToken()
	s, err := domain.NewSession(id, ViewingURL(base, id))
	if err != nil {
		return domain.Session{}, err
	}

	stored, err := r.store.Create(ctx, s)
	if err != nil {
		r.metrics.StoreError("create")
		log.Error().Err(err).Str("module", "app.registry").Str("session", id).Msg("persist session")
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	r.metrics.SessionCreated()
	log.Info().Str("module", "app.registry").Str("session", id).Str("url", stored.ViewingURL).Msg("session started")
	return stored, nil
}

func (r *Registry) GetSession(ctx context.Context, id string) (domain.Session, error) {
	s, err := r.store.FindByIdentifier(ctx, id)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.Session{}, err
	default:
		r.metrics.StoreError("find")
		log.Error().Err(err).Str("module", "app.registry").Str("session", id).Msg("lookup session")
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
}

// ViewingURL is base + "/session/" + id; base must already be normalized.
func ViewingURL(base, id string) string {
	return base + "/session/" + id
}

// normalizeOrigin keeps scheme, host and path of an http(s) URL and drops the
// trailing slash, query and fragment.
func normalizeOrigin(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidOrigin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
	}
	u.RawQuery, u.Fragment, u.RawFragment = "", "", ""
	u.User = nil
	return strings.TrimRight(u.String(), "/"), nil
}
