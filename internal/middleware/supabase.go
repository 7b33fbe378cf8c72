package middleware

import (
	"context"
	"fmt"

	supabase "github.com/supabase-community/supabase-go"

	"sci-cast/internal/models"
)

// SupabaseVerifier validates bearer tokens against Supabase auth.
type SupabaseVerifier struct {
	client *supabase.Client
}

// NewSupabaseVerifier wraps an initialized Supabase client.
func NewSupabaseVerifier(client *supabase.Client) *SupabaseVerifier {
	return &SupabaseVerifier{client: client}
}

// Verify resolves token to the Supabase user it belongs to.
func (v *SupabaseVerifier) Verify(_ context.Context, token string) (*models.User, error) {
	resp, err := v.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("get user for token: %w", err)
	}

	user := &models.User{
		ID:    resp.ID.String(),
		Email: resp.Email,
	}
	if name, ok := resp.UserMetadata["full_name"].(string); ok {
		user.Name = name
	}
	return user, nil
}
