// Package fieldsvc is the HTTP client for the alignment collaborator: the
// service that ingests weather reanalysis and elevation tiles and resamples
// them onto the shared analysis grid. It implements fields.Provider and is
// feature-flagged; without a configured URL the engine falls back to the
// synthetic provider.
package fieldsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// Client fetches aligned field grids over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a field service client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// payload is the wire format of the alignment service: shape, transform,
// and one row-major value array per field.
type payload struct {
	H         int        `json:"h"`
	W         int        `json:"w"`
	Transform [6]float64 `json:"transform"`
	WindU     []float32  `json:"wind_u"`
	WindV     []float32  `json:"wind_v"`
	Temp      []float32  `json:"temp"`
	RH        []float32  `json:"rh"`
	Slope     []float32  `json:"slope"`
}

// Fields fetches the aligned field set for a fire.
func (c *Client) Fields(ctx context.Context, fireID string) (domain.FieldSet, error) {
	u := fmt.Sprintf("%s/v1/fires/%s/fields", c.baseURL, url.PathEscape(fireID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.FieldSet{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FieldSet{}, fmt.Errorf("fetch fields for %s: %w", fireID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.FieldSet{}, fmt.Errorf("field service error: status %d: %s", resp.StatusCode, body)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return domain.FieldSet{}, fmt.Errorf("decode fields response: %w", err)
	}

	fs, err := p.toFieldSet()
	if err != nil {
		return domain.FieldSet{}, fmt.Errorf("fields for %s: %w", fireID, err)
	}
	return fs, nil
}

func (p payload) toFieldSet() (domain.FieldSet, error) {
	tr := domain.GeoTransform{
		A: p.Transform[0], B: p.Transform[1], C: p.Transform[2],
		D: p.Transform[3], E: p.Transform[4], F: p.Transform[5],
	}
	fs := domain.FieldSet{
		WindU: gridFrom(p.H, p.W, tr, p.WindU),
		WindV: gridFrom(p.H, p.W, tr, p.WindV),
		Temp:  gridFrom(p.H, p.W, tr, p.Temp),
		RH:    gridFrom(p.H, p.W, tr, p.RH),
		Slope: gridFrom(p.H, p.W, tr, p.Slope),
	}
	if fs.WindU == nil || fs.WindV == nil || fs.Temp == nil || fs.RH == nil || fs.Slope == nil {
		return domain.FieldSet{}, fmt.Errorf("field array length does not match %dx%d shape", p.H, p.W)
	}
	if err := fs.Validate(); err != nil {
		return domain.FieldSet{}, err
	}
	return fs, nil
}

func gridFrom(h, w int, tr domain.GeoTransform, vals []float32) *domain.Grid {
	if h <= 0 || w <= 0 || len(vals) != h*w {
		return nil
	}
	g := domain.NewGrid(h, w, tr)
	copy(g.Data(), vals)
	return g
}
