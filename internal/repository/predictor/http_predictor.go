package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"causalUplift/domain"

	"github.com/pobyzaarif/goshortcute"
)

type HTTPConfig struct {
	BaseURL           string
	BasicAuthUsername string
	BasicAuthPassword string
	Timeout           time.Duration
}

// HTTPPredictor scores rows through a model-serving endpoint.
type HTTPPredictor struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPPredictor(cfg HTTPConfig) *HTTPPredictor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPPredictor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type predictRequest struct {
	Columns []string         `json:"columns"`
	Records []map[string]any `json:"records"`
}

type predictResponse struct {
	Scores []float64 `json:"scores"`
}

// SchemaError is returned when the model server rejects the row schema.
type SchemaError struct {
	StatusCode int
	Body       string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model server rejected input schema (%d): %s", e.StatusCode, e.Body)
}

func (p *HTTPPredictor) Predict(ctx context.Context, frame domain.FeatureFrame) ([]float64, error) {
	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/predict"

	records := make([]map[string]any, frame.Len())
	for i := range records {
		records[i] = frame.Map(i)
	}

	payloadByte, err := json.Marshal(predictRequest{Columns: frame.Columns, Records: records})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadByte))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	if p.cfg.BasicAuthUsername != "" {
		buildBasicAuth := goshortcute.StringtoBase64Encode(p.cfg.BasicAuthUsername + ":" + p.cfg.BasicAuthPassword)
		req.Header.Add("Authorization", "Basic "+buildBasicAuth)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call model server: %w", err)
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(res.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read model server response: %w", err)
	}

	switch {
	case res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnprocessableEntity:
		return nil, &SchemaError{StatusCode: res.StatusCode, Body: truncate(string(bodyBytes), 512)}
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, fmt.Errorf("model server return negative response %v: %s", res.StatusCode, truncate(string(bodyBytes), 512))
	}

	var out predictResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model server response: %w", err)
	}

	return out.Scores, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
