package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/interfaces"
)

// catalogEntryDTO é o formato do backend de catálogos: {id, displayName,
// code?}. Quando code vem preenchido é ele o identificador canónico.
type catalogEntryDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// HTTPCatalogBackend consome o backend de catálogos: um endpoint por
// catálogo, tarifas por companhia.
type HTTPCatalogBackend struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCatalogBackend(baseURL string, timeout time.Duration) interfaces.CatalogBackend {
	return &HTTPCatalogBackend{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *HTTPCatalogBackend) FetchCatalog(ctx context.Context, name domain.CatalogName) ([]domain.CatalogEntry, error) {
	endpoint := fmt.Sprintf("%s/catalogos/%s", b.baseURL, url.PathEscape(string(name)))
	return b.fetch(ctx, endpoint)
}

func (b *HTTPCatalogBackend) FetchTariffs(ctx context.Context, companyID string) ([]domain.CatalogEntry, error) {
	endpoint := fmt.Sprintf("%s/companias/%s/tarifas", b.baseURL, url.PathEscape(companyID))
	return b.fetch(ctx, endpoint)
}

func (b *HTTPCatalogBackend) fetch(ctx context.Context, endpoint string) ([]domain.CatalogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s devolveu %d", domain.ErrCatalogLoad, endpoint, resp.StatusCode)
	}

	var dtos []catalogEntryDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("%w: resposta ilegível de %s: %v", domain.ErrCatalogLoad, endpoint, err)
	}

	entries := make([]domain.CatalogEntry, 0, len(dtos))
	for _, dto := range dtos {
		id := dto.ID
		if dto.Code != "" {
			id = dto.Code
		}
		entries = append(entries, domain.CatalogEntry{
			ID:          id,
			DisplayName: dto.DisplayName,
			Description: dto.Description,
		})
	}
	return entries, nil
}
