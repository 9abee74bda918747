package api

import (
	"context"

	"github.com/talentbrains/matching-engine/internal/models"
)

type contextKey string

const clientContextKey contextKey = "api_client"

// ClientFromContext extracts the authenticated APIClient from the context
func ClientFromContext(ctx context.Context) *models.APIClient {
	client, ok := ctx.Value(clientContextKey).(*models.APIClient)
	if !ok {
		return nil
	}
	return client
}

// ContextWithClient adds an APIClient to the context
func ContextWithClient(ctx context.Context, client *models.APIClient) context.Context {
	return context.WithValue(ctx, clientContextKey, client)
}
