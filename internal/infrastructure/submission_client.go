package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Victor-armando18/service-policy/internal/domain"
	"github.com/Victor-armando18/service-policy/internal/interfaces"
)

// HTTPSubmissionTransport entrega o payload mapeado ao backend de gestão de
// pólizas. A rejeição volta como erro; o motor trata a recuperação.
type HTTPSubmissionTransport struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSubmissionTransport(baseURL string, timeout time.Duration) interfaces.SubmissionTransport {
	return &HTTPSubmissionTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *HTTPSubmissionTransport) Submit(ctx context.Context, payload domain.ExternalPayload) (*domain.SubmissionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/polizas", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend de pólizas inacessível: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("backend de pólizas devolveu %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var result domain.SubmissionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		return nil, fmt.Errorf("resposta de submissão ilegível: %w", err)
	}
	return &result, nil
}
