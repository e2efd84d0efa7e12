package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// modelsResponse is the OpenAI-compatible GET /models body.
type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ListModels fetches the model list from the provider's GET {base_url}/models
// endpoint. The registry never probes providers; this is called only by the
// health endpoint, which supplies its own short deadline via ctx.
func (c *Client) ListModels(ctx context.Context, d *Descriptor) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+modelsPath, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, d)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(d, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromStatus(d, resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, c.wrapTransportError(d, err)
	}

	var models modelsResponse
	if err := json.Unmarshal(body, &models); err != nil {
		return nil, &ParseError{Provider: d.Name, RawResponse: excerpt(body), Cause: err}
	}

	ids := make([]string, 0, len(models.Data))
	for _, m := range models.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
