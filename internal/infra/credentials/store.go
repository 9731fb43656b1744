// Package credentials keeps third-party service secrets in the database so
// operators can rotate them with crowdadmin instead of redeploying.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

const (
	ProviderSupabaseStorage = "supabase_storage"
	ProviderGoogleOAuth     = "google_oauth"
)

// Known lists the providers crowdadmin accepts.
var Known = []string{ProviderSupabaseStorage, ProviderGoogleOAuth}

type Store struct {
	sql infra.SQLExecutor
	now func() time.Time
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql, now: time.Now}
}

// Token returns the stored secret for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("load %s token: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

// Resolve prefers the configured value and falls back to the stored token.
func (s *Store) Resolve(ctx context.Context, provider, configured string) (string, error) {
	if v := strings.TrimSpace(configured); v != "" {
		return v, nil
	}
	return s.Token(ctx, provider)
}

// Set stores or rotates the secret for provider.
func (s *Store) Set(ctx context.Context, provider, token string) error {
	provider = strings.TrimSpace(provider)
	token = strings.TrimSpace(token)
	if !known(provider) {
		return fmt.Errorf("unknown provider %q", provider)
	}
	if token == "" {
		return fmt.Errorf("%s token is required", provider)
	}
	raw, err := json.Marshal(map[string]any{"rotated_at": s.now().UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

func known(provider string) bool {
	for _, p := range Known {
		if p == provider {
			return true
		}
	}
	return false
}
