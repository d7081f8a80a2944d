package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/codelens-dev/codelens/internal/errs"
)

// LocalProvider calls an already-running embedding HTTP endpoint. Model
// execution is treated as an external, pluggable collaborator: this is the
// thin client side of that pluggability, and it never owns the server's
// lifecycle.
type LocalProvider struct {
	endpoint string
	modelID  string
	dim      int
	client   *http.Client
}

// NewLocalProvider builds a LocalProvider against endpoint, which must speak
// the {texts: []string} -> {embeddings: [][]float32} protocol on /embed.
func NewLocalProvider(endpoint, modelID string, dim int) *LocalProvider {
	return &LocalProvider{
		endpoint: endpoint,
		modelID:  modelID,
		dim:      dim,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *LocalProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, errs.Wrap(errs.EmbedderError, "failed to marshal embed request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.EmbedderError, "failed to build embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.EmbedderError, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.EmbedderError, fmt.Sprintf("embedding server returned status %d", resp.StatusCode))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errs.Wrap(errs.EmbedderError, "failed to decode embed response", err)
	}
	if len(decoded.Embeddings) != len(texts) {
		return nil, errs.New(errs.EmbedderError, "embedding response length mismatch")
	}

	return decoded.Embeddings, nil
}

func (p *LocalProvider) ModelID() string      { return p.modelID }
func (p *LocalProvider) Dim() int             { return p.dim }
func (p *LocalProvider) ProviderName() string { return "local" }
