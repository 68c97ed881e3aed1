// Package cardindex talks to the legacy card-index API that the catalog
// is synced from. Every response arrives wrapped in the standard
// success/status/meta envelope with Mongo-style "_id" identifiers.
package cardindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sorenkv/cardvault-backend/internal/pkg/envelope"
	"github.com/sorenkv/cardvault-backend/internal/pkg/errclass"
	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
	"github.com/sorenkv/cardvault-backend/internal/platform/envutil"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

// Set is an expansion as served by the card-index API, after envelope
// normalization ("_id" exposed as ID).
type Set struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Series      string `json:"series"`
	Language    string `json:"language"`
	ReleaseYear int    `json:"release_year"`
	TotalCards  int    `json:"total_cards"`
	SymbolURL   string `json:"symbol_url"`
}

// Card is a card definition as served by the card-index API.
type Card struct {
	ID       string `json:"id"`
	SetID    string `json:"set_id"`
	Name     string `json:"name"`
	Number   string `json:"number"`
	Rarity   string `json:"rarity"`
	Variety  string `json:"variety"`
	ImageURL string `json:"image_url"`
}

type Client interface {
	ListSets(ctx context.Context) ([]Set, error)
	ListCardsBySet(ctx context.Context, setID string) ([]Card, error)
	GetCard(ctx context.Context, cardID string) (*Card, error)
	SearchCards(ctx context.Context, query string, limit int) ([]Card, error)
}

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retry      RetryConfig
	classifier *errclass.Classifier
	log        *logger.Logger
}

func NewClient(baseLog *logger.Logger) (Client, error) {
	baseURL := os.Getenv("CARD_INDEX_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("CARD_INDEX_BASE_URL is not set")
	}
	timeout := envutil.Duration("CARD_INDEX_TIMEOUT", 30*time.Second)
	return &client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     os.Getenv("CARD_INDEX_API_KEY"),
		retry:      DefaultRetryConfig(),
		classifier: errclass.New(),
		log:        baseLog.With("client", "cardindex"),
	}, nil
}

// NewClientWith builds a client against an explicit base URL. Used by
// tests and the sync CLI.
func NewClientWith(baseURL string, httpClient *http.Client, baseLog *logger.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &client{
		httpClient: httpClient,
		baseURL:    baseURL,
		retry:      DefaultRetryConfig(),
		classifier: errclass.New(),
		log:        baseLog.With("client", "cardindex"),
	}
}

func (c *client) ListSets(ctx context.Context) ([]Set, error) {
	payload, err := c.getJSON(ctx, "/api/v2/sets", nil)
	if err != nil {
		return nil, err
	}
	var sets []Set
	if err := rebind(payload, &sets); err != nil {
		return nil, fmt.Errorf("decode sets: %w", err)
	}
	return sets, nil
}

func (c *client) ListCardsBySet(ctx context.Context, setID string) ([]Card, error) {
	payload, err := c.getJSON(ctx, "/api/v2/sets/"+url.PathEscape(setID)+"/cards", nil)
	if err != nil {
		return nil, err
	}
	var cards []Card
	if err := rebind(payload, &cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return cards, nil
}

func (c *client) GetCard(ctx context.Context, cardID string) (*Card, error) {
	payload, err := c.getJSON(ctx, "/api/v2/cards/"+url.PathEscape(cardID), nil)
	if err != nil {
		return nil, err
	}
	var card Card
	if err := rebind(payload, &card); err != nil {
		return nil, fmt.Errorf("decode card: %w", err)
	}
	return &card, nil
}

func (c *client) SearchCards(ctx context.Context, query string, limit int) ([]Card, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	payload, err := c.getJSON(ctx, "/api/v2/cards/search", q)
	if err != nil {
		return nil, err
	}
	var cards []Card
	if err := rebind(payload, &cards); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return cards, nil
}

// getJSON performs a GET with retry, unwraps the response envelope and
// returns the normalized data payload.
func (c *client) getJSON(ctx context.Context, path string, query url.Values) (any, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload any
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return err
		}

		var raw any
		if jsonErr := json.Unmarshal(body, &raw); jsonErr != nil {
			if resp.StatusCode >= 400 {
				return apierr.New(resp.StatusCode, "UPSTREAM_ERROR",
					fmt.Errorf("card-index returned status %d", resp.StatusCode))
			}
			return fmt.Errorf("decode response body: %w", jsonErr)
		}

		data, tErr := envelope.Transform(raw)
		if tErr != nil {
			if resp.StatusCode >= 400 {
				return apierr.New(resp.StatusCode, "UPSTREAM_ERROR",
					fmt.Errorf("card-index returned status %d", resp.StatusCode))
			}
			return tErr
		}
		if !envelope.IsSuccess(raw) {
			upstreamErr, _ := envelope.ErrorInfo(raw)
			status := resp.StatusCode
			if status < 400 {
				status = http.StatusBadGateway
			}
			if upstreamErr == nil {
				upstreamErr = &envelope.APIError{Message: "unknown upstream error"}
			}
			return apierr.New(status, upstreamErr.Code, fmt.Errorf("card-index: %s", upstreamErr.Message))
		}
		if meta, ok := envelope.MetaOf(raw); ok && meta.Cached {
			c.log.Debug("card-index served a cached response", "path", path)
		}

		payload = data
		return nil
	}

	if err := c.withRetry(ctx, op); err != nil {
		return nil, err
	}
	return payload, nil
}

// rebind converts the normalized payload into a typed DTO.
func rebind(payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
