package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/architeacher/household/internal/ports"
	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/vault/api"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrSecretsDisabled = errors.New("secret storage is not enabled")
	ErrInvalidSecret   = errors.New("invalid secret format")
)

func Init() (*ServiceConfig, error) {
	cfg := &ServiceConfig{}

	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	if len(ServiceVersion) != 0 {
		cfg.App.ServiceVersion = ServiceVersion
	}

	if len(CommitSHA) != 0 {
		cfg.App.CommitSHA = CommitSHA
	}

	return cfg, nil
}

// Loader overlays secrets kept in Vault on top of the environment
// configuration.
type Loader struct {
	cfg         *ServiceConfig
	secretsRepo ports.SecretsRepository
	retryDelay  time.Duration
}

func NewLoader(cfg *ServiceConfig, secretsRepo ports.SecretsRepository) *Loader {
	return &Loader{
		cfg:         cfg,
		secretsRepo: secretsRepo,
		retryDelay:  time.Second,
	}
}

// Load authenticates, reads apps/data/<mount path> and applies the known
// keys. It returns the secret version that was applied.
func (l *Loader) Load(ctx context.Context) (uint, error) {
	if !l.cfg.SecretsStorage.Enabled {
		return 0, ErrSecretsDisabled
	}

	if err := l.authenticate(ctx); err != nil {
		return 0, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	secret, err := l.read(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return 0, nil
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%w at apps/data/%s, missing 'data' key", ErrInvalidSecret, l.cfg.SecretsStorage.MountPath)
	}

	for key, value := range data {
		if text, ok := value.(string); ok && text != "" {
			l.apply(key, text)
		}
	}

	metadata, _ := secret.Data["metadata"].(map[string]any)

	return secretVersion(metadata)
}

func (l *Loader) authenticate(ctx context.Context) error {
	storage := l.cfg.SecretsStorage

	switch strings.ToLower(storage.AuthMethod) {
	case "token":
		if storage.Token == "" {
			return fmt.Errorf("token is required for token auth method")
		}

		l.secretsRepo.SetToken(storage.Token)

		return nil
	case "approle":
		if storage.RoleID == "" || storage.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth method")
		}

		resp, err := l.secretsRepo.Login(ctx, "auth/approle/login", map[string]any{
			"role_id":   storage.RoleID,
			"secret_id": storage.SecretID,
		})
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("no auth info returned from Vault")
		}

		l.secretsRepo.SetToken(resp.Auth.ClientToken)

		return nil
	default:
		return fmt.Errorf("unsupported auth method: %s", storage.AuthMethod)
	}
}

func (l *Loader) read(ctx context.Context) (*api.Secret, error) {
	path := "apps/data/" + l.cfg.SecretsStorage.MountPath

	ctx, cancel := context.WithTimeout(ctx, l.cfg.SecretsStorage.Timeout)
	defer cancel()

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = l.retryDelay

	secret, err := backoff.Retry(
		ctx,
		func() (*api.Secret, error) {
			return l.secretsRepo.GetSecrets(ctx, path)
		},
		backoff.WithMaxTries(l.cfg.SecretsStorage.MaxRetries+1),
		backoff.WithBackOff(expBackoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read from path %s after %d retries: %w", path, l.cfg.SecretsStorage.MaxRetries, err)
	}

	return secret, nil
}

func (l *Loader) apply(key, value string) {
	switch key {
	case "POSTGRES_USERNAME":
		l.cfg.Database.Postgres.Username = value
	case "POSTGRES_PASSWORD":
		l.cfg.Database.Postgres.Password = value
	case "MSSQL_USERNAME":
		l.cfg.Database.MSSQL.Username = value
	case "MSSQL_PASSWORD":
		l.cfg.Database.MSSQL.Password = value
	case "SQLITE_DSN":
		l.cfg.Database.SQLite.DSN = value
	}
}

func secretVersion(metadata map[string]any) (uint, error) {
	if metadata == nil {
		return 0, nil
	}

	version, ok := metadata["version"]
	if !ok {
		return 0, nil
	}

	switch v := version.(type) {
	case float64:
		return uint(v), nil
	case uint:
		return v, nil
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("failed to parse version: %w", err)
		}

		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unexpected version type: %T", version)
	}
}
