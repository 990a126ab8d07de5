package isodb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"isodb/internal/isotherm"
	"isodb/internal/logging"
)

const apiPrefix = "/isodb/api"

// Document is a decoded ISODB JSON object. Numbers are kept as json.Number.
type Document map[string]any

// IsothermSummary is one row of the isotherm listing.
type IsothermSummary struct {
	Filename string `json:"filename"`
	DOI      string `json:"DOI"`
}

// Article is one bibliography entry with the isotherm files it owns.
type Article struct {
	DOI       string
	Isotherms []string
	Entry     Document
}

// Client talks to the ISODB API.
type Client struct {
	http       *resty.Client
	httpClient *http.Client
	logger     *slog.Logger

	mu        sync.Mutex
	gases     []isotherm.Adsorbate
	inchikeys map[string]struct{}
	materials []isotherm.Adsorbent
	units     *isotherm.AdsorptionUnits
}

var (
	_ isotherm.AdsorbateResolver    = (*Client)(nil)
	_ isotherm.AdsorbateCatalog     = (*Client)(nil)
	_ isotherm.AdsorbentResolver    = (*Client)(nil)
	_ isotherm.AdsorptionUnitLookup = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an ISODB client rooted at host, e.g. https://adsorption.nist.gov.
func New(host, userAgent string, timeout time.Duration, opts ...Option) (*Client, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return nil, errors.New("isodb host required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "isodb")

	var rc *resty.Client
	if client.httpClient != nil {
		rc = resty.NewWithClient(client.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(host + apiPrefix).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if ua := strings.TrimSpace(userAgent); ua != "" {
		rc.SetHeader("User-Agent", ua)
	}
	client.http = rc
	return client, nil
}

// IsothermFileName appends ".json" to name unless it already ends with it.
func IsothermFileName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, ".json") {
		return name
	}
	return name + ".json"
}

// Isotherm downloads a single isotherm document.
func (c *Client) Isotherm(ctx context.Context, name string) (isotherm.Record, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == ".json" {
		return nil, errors.New("isotherm name must not be empty")
	}
	body, err := c.get(ctx, "/isotherm/"+url.PathEscape(IsothermFileName(name)))
	if err != nil {
		return nil, err
	}
	rec, err := isotherm.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("isotherm %s: %w", name, err)
	}
	return rec, nil
}

// Isotherms lists every isotherm in the database.
func (c *Client) Isotherms(ctx context.Context) ([]IsothermSummary, error) {
	var out []IsothermSummary
	if err := c.getJSON(ctx, "/isotherms.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bibliography lists every bibliography entry.
func (c *Client) Bibliography(ctx context.Context) ([]Article, error) {
	var entries []Document
	if err := c.getJSON(ctx, "/biblio.json", &entries); err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(entries))
	for i, entry := range entries {
		doi, _ := entry["DOI"].(string)
		if strings.TrimSpace(doi) == "" {
			return nil, fmt.Errorf("bibliography entry %d has no DOI", i)
		}
		article := Article{DOI: doi, Entry: entry}
		refs, _ := entry["isotherms"].([]any)
		for _, ref := range refs {
			obj, ok := ref.(map[string]any)
			if !ok {
				continue
			}
			if filename, ok := obj["filename"].(string); ok && strings.TrimSpace(filename) != "" {
				article.Isotherms = append(article.Isotherms, filename)
			}
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// Gases returns the adsorbate catalog.
func (c *Client) Gases(ctx context.Context) ([]isotherm.Adsorbate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadGases(ctx)
}

func (c *Client) loadGases(ctx context.Context) ([]isotherm.Adsorbate, error) {
	if c.gases != nil {
		return c.gases, nil
	}
	var gases []isotherm.Adsorbate
	if err := c.getJSON(ctx, "/gases.json", &gases); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(gases))
	for _, gas := range gases {
		if key, ok := gas.InChIKey(); ok {
			keys[key] = struct{}{}
		}
	}
	c.gases = gases
	c.inchikeys = keys
	c.logger.Debug("adsorbate catalog loaded", logging.Int("count", len(gases)))
	return gases, nil
}

// Materials returns the adsorbent catalog.
func (c *Client) Materials(ctx context.Context) ([]isotherm.Adsorbent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadMaterials(ctx)
}

func (c *Client) loadMaterials(ctx context.Context) ([]isotherm.Adsorbent, error) {
	if c.materials != nil {
		return c.materials, nil
	}
	var materials []isotherm.Adsorbent
	if err := c.getJSON(ctx, "/materials.json", &materials); err != nil {
		return nil, err
	}
	c.materials = materials
	c.logger.Debug("adsorbent catalog loaded", logging.Int("count", len(materials)))
	return materials, nil
}

// AdsorptionUnits returns the unit lookup built from the unit name table and
// the default unit table.
func (c *Client) AdsorptionUnits(ctx context.Context) (*isotherm.AdsorptionUnits, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.units != nil {
		return c.units, nil
	}
	var all, defaults []isotherm.Unit
	if err := c.getJSON(ctx, "/adsorption-unit-lookup.json", &all); err != nil {
		return nil, err
	}
	if err := c.getJSON(ctx, "/default-adsorption-unit-lookup.json", &defaults); err != nil {
		return nil, err
	}
	c.units = isotherm.NewAdsorptionUnits(all, defaults)
	return c.units, nil
}

// AdsorbateInChIKeys implements isotherm.AdsorbateCatalog.
func (c *Client) AdsorbateInChIKeys(ctx context.Context) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.loadGases(ctx); err != nil {
		return nil, err
	}
	return c.inchikeys, nil
}

// AdsorptionUnitID implements isotherm.AdsorptionUnitLookup.
func (c *Client) AdsorptionUnitID(ctx context.Context, name string) (int, bool, error) {
	units, err := c.AdsorptionUnits(ctx)
	if err != nil {
		return 0, false, err
	}
	return units.AdsorptionUnitID(ctx, name)
}

// DefaultAdsorptionUnit implements isotherm.AdsorptionUnitLookup.
func (c *Client) DefaultAdsorptionUnit(ctx context.Context, id int) (string, bool, error) {
	units, err := c.AdsorptionUnits(ctx)
	if err != nil {
		return "", false, err
	}
	return units.DefaultAdsorptionUnit(ctx, id)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("isodb request %s: %w", path, err)
	}
	latency := resp.Time()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("isodb %s returned %d (latency=%v)", path, resp.StatusCode(), latency)
	}
	c.logger.Debug("isodb request complete",
		logging.String("path", path),
		logging.Int("bytes", len(resp.Body())),
		logging.Duration("latency", latency))
	return resp.Body(), nil
}
