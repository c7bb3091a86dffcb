package repos

import (
	"context"

	"github.com/architeacher/household/internal/ports"
	"github.com/hashicorp/vault/api"
)

var _ ports.SecretsRepository = (*VaultRepository)(nil)

// VaultRepository reads KV v2 secrets through the Vault API client.
type VaultRepository struct {
	client *api.Client
}

func NewVaultRepository(client *api.Client) *VaultRepository {
	return &VaultRepository{client: client}
}

func (r *VaultRepository) SetToken(v string) {
	r.client.SetToken(v)
}

func (r *VaultRepository) Login(ctx context.Context, path string, data map[string]any) (*api.Secret, error) {
	return r.client.Logical().WriteWithContext(ctx, path, data)
}

func (r *VaultRepository) GetSecrets(ctx context.Context, path string) (*api.Secret, error) {
	return r.client.Logical().ReadWithContext(ctx, path)
}
