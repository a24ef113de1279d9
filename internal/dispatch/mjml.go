package dispatch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/github-reporter/internal/config"
	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
)

// MJMLClient converts MJML markup to HTML through the MJML render API.
// Identical markup is converted once and served from an LRU cache.
type MJMLClient struct {
	http      *http.Client
	baseURL   string
	appID     string
	secretKey string
	cache     *lru.Cache[string, string]
	logger    *logrus.Logger
}

type mjmlRequest struct {
	MJML string `json:"mjml"`
}

type mjmlResponse struct {
	HTML    string `json:"html"`
	Message string `json:"message"`
	Errors  []struct {
		Line    int    `json:"line"`
		Message string `json:"message"`
		TagName string `json:"tagName"`
	} `json:"errors"`
}

// NewMJMLClient creates a client for the render API.
func NewMJMLClient(cfg config.RenderConfig, httpClient *http.Client, logger *logrus.Logger) (*MJMLClient, error) {
	cache, err := lru.New[string, string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create mjml cache: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MJMLClient{
		http:      httpClient,
		baseURL:   strings.TrimSuffix(cfg.APIURL, "/"),
		appID:     cfg.AppID,
		secretKey: cfg.SecretKey,
		cache:     cache,
		logger:    logger,
	}, nil
}

func cacheKey(markup string) string {
	sum := sha256.Sum256([]byte(markup))
	return hex.EncodeToString(sum[:])
}

// Render returns the HTML for markup.
func (c *MJMLClient) Render(ctx context.Context, markup string) (string, error) {
	key := cacheKey(markup)
	if html, ok := c.cache.Get(key); ok {
		c.logger.WithField("key", key[:12]).Debug("MJML cache hit")
		return html, nil
	}

	body, err := json.Marshal(mjmlRequest{MJML: markup})
	if err != nil {
		return "", apperrors.NewRenderOrDispatchError("failed to encode mjml request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewRenderOrDispatchError("failed to create mjml request", err)
	}
	req.SetBasicAuth(c.appID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.NewRenderOrDispatchError("mjml render request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewRenderOrDispatchError("failed to read mjml response", err)
	}

	var out mjmlResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", apperrors.NewRenderOrDispatchError(fmt.Sprintf("mjml returned %d with undecodable body", resp.StatusCode), err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewRenderOrDispatchError(fmt.Sprintf("mjml returned %d: %s", resp.StatusCode, out.Message), nil)
	}
	if out.HTML == "" {
		return "", apperrors.NewRenderOrDispatchError("mjml returned no html", nil)
	}
	for _, e := range out.Errors {
		c.logger.WithFields(logrus.Fields{
			"line": e.Line,
			"tag":  e.TagName,
		}).Warn("MJML: " + e.Message)
	}

	c.cache.Add(key, out.HTML)
	return out.HTML, nil
}
