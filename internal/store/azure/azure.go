// Package azure reads secrets from an Azure Key Vault using the Azure CLI
// login of the current user.
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvb/internal/store"
)

// VaultURL is the data-plane endpoint of the named vault.
func VaultURL(name string) string {
	return fmt.Sprintf("https://%s.vault.azure.net", name)
}

// secretsClient is the part of *azsecrets.Client the store uses.
type secretsClient interface {
	NewListSecretPropertiesPager(*azsecrets.ListSecretPropertiesOptions) *runtime.Pager[azsecrets.ListSecretPropertiesResponse]
	NewListSecretPropertiesVersionsPager(name string, opts *azsecrets.ListSecretPropertiesVersionsOptions) *runtime.Pager[azsecrets.ListSecretPropertiesVersionsResponse]
	GetSecret(ctx context.Context, name, version string, opts *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// Store is a store.Store backed by Key Vault.
type Store struct {
	vault  string
	client secretsClient
	log    logr.Logger
}

var _ store.Store = (*Store)(nil)

// New connects to vault with the Azure CLI credential. No request is made
// until the first call.
func New(vault string, log logr.Logger) (*Store, error) {
	cred, err := azidentity.NewAzureCLICredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure cli credential: %w", err)
	}
	client, err := azsecrets.NewClient(VaultURL(vault), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("key vault client for %s: %w", vault, err)
	}
	return &Store{vault: vault, client: client, log: log}, nil
}

func newWithClient(vault string, c secretsClient) *Store {
	return &Store{vault: vault, client: c, log: logr.Discard()}
}

// Vault is the vault name.
func (s *Store) Vault() string { return s.vault }

// ListSecrets returns every secret in the vault sorted by name.
func (s *Store) ListSecrets(ctx context.Context) ([]store.Secret, error) {
	var out []store.Secret
	pager := s.client.NewListSecretPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing secrets in %s: %w", s.vault, err)
		}
		for _, p := range page.Value {
			if p == nil || p.ID == nil {
				continue
			}
			out = append(out, secretFrom(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	s.log.V(1).Info("listed secrets", "vault", s.vault, "count", len(out))
	return out, nil
}

// ListVersions returns the versions of name, newest first.
func (s *Store) ListVersions(ctx context.Context, name string) ([]store.Version, error) {
	var out []store.Version
	pager := s.client.NewListSecretPropertiesVersionsPager(name, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing versions of %s: %w", name, mapErr(err))
		}
		for _, p := range page.Value {
			if p == nil || p.ID == nil {
				continue
			}
			out = append(out, versionFrom(p))
		}
	}
	store.SortNewestFirst(out)
	s.log.V(1).Info("listed versions", "secret", name, "count", len(out))
	return out, nil
}

// GetValue fetches the value of one version.
func (s *Store) GetValue(ctx context.Context, name, version string) (string, error) {
	resp, err := s.client.GetSecret(ctx, name, version, nil)
	if err != nil {
		return "", fmt.Errorf("getting %s@%s: %w", name, version, mapErr(err))
	}
	return deref(resp.Value), nil
}

func secretFrom(p *azsecrets.SecretProperties) store.Secret {
	s := store.Secret{
		Name:        p.ID.Name(),
		ContentType: deref(p.ContentType),
		Tags:        tags(p.Tags),
	}
	if a := p.Attributes; a != nil {
		s.Enabled = deref(a.Enabled)
		s.Created = timeOf(a.Created)
		s.Updated = timeOf(a.Updated)
	}
	return s
}

func versionFrom(p *azsecrets.SecretProperties) store.Version {
	v := store.Version{
		Name:        p.ID.Name(),
		ID:          p.ID.Version(),
		ContentType: deref(p.ContentType),
		Tags:        tags(p.Tags),
	}
	if a := p.Attributes; a != nil {
		v.Enabled = deref(a.Enabled)
		v.Created = timeOf(a.Created)
		v.Updated = timeOf(a.Updated)
		v.Expires = timeOf(a.Expires)
		v.NotBefore = timeOf(a.NotBefore)
		v.RecoverableDays = int(deref(a.RecoverableDays))
		v.RecoveryLevel = deref(a.RecoveryLevel)
	}
	return v
}

func tags(in map[string]*string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = deref(v)
	}
	return out
}

func timeOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// mapErr turns a 404 from the service into store.ErrNotFound, keeping the
// response error in the chain.
func mapErr(err error) error {
	var re *azcore.ResponseError
	if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}
	return err
}
