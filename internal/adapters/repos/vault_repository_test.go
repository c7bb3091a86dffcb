package repos_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/architeacher/household/internal/adapters/repos"
	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/suite"
)

type VaultRepositoryTestSuite struct {
	suite.Suite

	server *httptest.Server
	repo   *repos.VaultRepository
	tokens []string
}

func TestVaultRepositoryTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(VaultRepositoryTestSuite))
}

func (s *VaultRepositoryTestSuite) SetupTest() {
	s.tokens = nil

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.tokens = append(s.tokens, r.Header.Get("X-Vault-Token"))

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/apps/data/household":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"data":     map[string]any{"POSTGRES_PASSWORD": "s3cr3t"},
					"metadata": map[string]any{"version": 7},
				},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/v1/auth/approle/login":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"auth": map[string]any{"client_token": "issued"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
		}
	}))

	cfg := api.DefaultConfig()
	cfg.Address = s.server.URL

	client, err := api.NewClient(cfg)
	s.Require().NoError(err)

	s.repo = repos.NewVaultRepository(client)
}

func (s *VaultRepositoryTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *VaultRepositoryTestSuite) TestGetSecretsSendsToken() {
	s.repo.SetToken("root")

	secret, err := s.repo.GetSecrets(context.Background(), "apps/data/household")
	s.Require().NoError(err)
	s.Require().NotNil(secret)

	data, ok := secret.Data["data"].(map[string]any)
	s.Require().True(ok)
	s.Equal("s3cr3t", data["POSTGRES_PASSWORD"])
	s.Equal([]string{"root"}, s.tokens)
}

func (s *VaultRepositoryTestSuite) TestGetSecretsMissingPath() {
	secret, err := s.repo.GetSecrets(context.Background(), "apps/data/unknown")
	s.Require().NoError(err)
	s.Nil(secret)
}

func (s *VaultRepositoryTestSuite) TestLogin() {
	secret, err := s.repo.Login(context.Background(), "auth/approle/login", map[string]any{
		"role_id":   "role",
		"secret_id": "secret",
	})
	s.Require().NoError(err)
	s.Require().NotNil(secret.Auth)
	s.Equal("issued", secret.Auth.ClientToken)
}
