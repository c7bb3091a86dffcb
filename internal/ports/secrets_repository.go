package ports

import (
	"context"

	"github.com/hashicorp/vault/api"
)

type (
	// SecretsRepository reads database credentials from a secrets backend.
	SecretsRepository interface {
		SetToken(v string)
		Login(ctx context.Context, path string, data map[string]any) (*api.Secret, error)
		GetSecrets(ctx context.Context, path string) (*api.Secret, error)
	}
)
