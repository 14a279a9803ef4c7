package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/fileit-code/burg-ecom/internal/domain"
)

const headerCorrelationID = "X-Correlation-Id"

// StatusError is returned when the backend responds with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "backend responded " + strconv.Itoa(e.StatusCode)
}

// Client talks to the remote product/order backend. It owns request building
// and response decoding only; failure policy belongs to the stores.
type Client struct {
	baseURL   string
	client    *http.Client
	sessionID string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:   baseURL,
		client:    httpClient,
		sessionID: uuid.New().String(),
	}
}

type productListResponse struct {
	Products json.RawMessage `json:"products"`
}

// ListProducts fetches the catalog for a vendor. The backend returns
// products as a list, except when the vendor has a single item, in which
// case it may return the bare object; both shapes decode to a slice here.
func (c *Client) ListProducts(ctx context.Context, vendorKey string) ([]domain.Product, error) {
	body, err := c.get(ctx, "/products/list/"+url.PathEscape(vendorKey))
	if err != nil {
		return nil, err
	}

	var list productListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}
	if len(list.Products) == 0 || string(list.Products) == "null" {
		return nil, fmt.Errorf("decode product list: missing products field")
	}

	var products []domain.Product
	if err := json.Unmarshal(list.Products, &products); err != nil {
		var single domain.Product
		if err := json.Unmarshal(list.Products, &single); err != nil {
			return nil, fmt.Errorf("decode product list: %w", err)
		}
		products = []domain.Product{single}
	}

	return products, nil
}

type productGetResponse struct {
	Product *domain.Product `json:"product"`
}

// GetProduct fetches one item by id. A null product decodes to nil, nil.
func (c *Client) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	body, err := c.get(ctx, "/products/get/"+strconv.Itoa(id))
	if err != nil {
		return nil, err
	}

	var resp productGetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}

	return resp.Product, nil
}

type createPreferenceRequest struct {
	Items []domain.PreferenceItem `json:"items"`
}

type createPreferenceResponse struct {
	Preference domain.Preference `json:"preference"`
}

// CreatePreference registers the payable items with the hosted-payment
// provider and returns the issued preference.
func (c *Client) CreatePreference(ctx context.Context, items []domain.PreferenceItem) (*domain.Preference, error) {
	body, err := c.post(ctx, "/payments/createPreference", createPreferenceRequest{Items: items})
	if err != nil {
		return nil, err
	}

	var resp createPreferenceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode preference: %w", err)
	}
	if resp.Preference.ID == "" {
		return nil, fmt.Errorf("decode preference: missing id")
	}

	return &resp.Preference, nil
}

// CreateOrder persists the order. Any 2xx response is success; the response
// body is not interpreted.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) error {
	_, err := c.post(ctx, "/orders/create", req)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data))
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerCorrelationID, c.sessionID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return data, nil
}
