// Package shopify is a small client for the Shopify Admin REST API covering
// the customer and order calls the membership sync needs.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Customer is the subset of the Admin API customer resource we read
type Customer struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Tags        string    `json:"tags"`
	OrdersCount int       `json:"orders_count"`
	TotalSpent  string    `json:"total_spent"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IDString returns the customer id in its decimal string form
func (c Customer) IDString() string {
	return strconv.FormatInt(c.ID, 10)
}

// FullName joins first and last name
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// TagList splits the comma separated tag string
func (c Customer) TagList() []string {
	return SplitTags(c.Tags)
}

// Order is the subset of the Admin API order resource we read
type Order struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	OrderNumber int        `json:"order_number"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	Customer    *Customer  `json:"customer"`
	LineItems   []LineItem `json:"line_items"`
}

// LineItem is one product line on an order
type LineItem struct {
	SKU   string `json:"sku"`
	Title string `json:"title"`
}

// Client talks to one shop
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for shop (e.g. "my-store.myshopify.com")
func NewClient(shop, token, apiVersion string, timeout time.Duration) *Client {
	shop = strings.TrimSuffix(strings.TrimPrefix(shop, "https://"), "/")
	return &Client{
		baseURL:    fmt.Sprintf("https://%s/admin/api/%s", shop, apiVersion),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL points the client at an arbitrary API root
func NewClientWithBaseURL(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), token: token, httpClient: httpClient}
}

// APIError is a non-2xx response from Shopify
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify API error (status %d): %s", e.StatusCode, e.Body)
}

// SearchCustomers runs a customer search query, following pagination
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]Customer, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "250")

	var all []Customer
	next := c.baseURL + "/customers/search.json?" + params.Encode()
	for next != "" {
		var page struct {
			Customers []Customer `json:"customers"`
		}
		link, err := c.getJSON(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Customers...)
		next = link
	}
	return all, nil
}

// SearchCustomersByTag returns customers carrying tag, optionally only those
// updated since the given time
func (c *Client) SearchCustomersByTag(ctx context.Context, tag string, updatedSince *time.Time) ([]Customer, error) {
	q := fmt.Sprintf("tag:%q", tag)
	if updatedSince != nil {
		q += " updated_at:>=" + updatedSince.UTC().Format(time.RFC3339)
	}
	return c.SearchCustomers(ctx, q)
}

// ListOrders returns all orders (any status), optionally created since a time
func (c *Client) ListOrders(ctx context.Context, createdSince *time.Time) ([]Order, error) {
	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", "250")
	if createdSince != nil {
		params.Set("created_at_min", createdSince.UTC().Format(time.RFC3339))
	}

	var all []Order
	next := c.baseURL + "/orders.json?" + params.Encode()
	for next != "" {
		var page struct {
			Orders []Order `json:"orders"`
		}
		link, err := c.getJSON(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Orders...)
		next = link
	}
	return all, nil
}

// GetCustomer fetches one customer by id
func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var body struct {
		Customer Customer `json:"customer"`
	}
	if _, err := c.getJSON(ctx, c.baseURL+"/customers/"+url.PathEscape(id)+".json", &body); err != nil {
		return nil, err
	}
	return &body.Customer, nil
}

// SetCustomerTags replaces the customer's tag list
func (c *Client) SetCustomerTags(ctx context.Context, id string, tags []string) error {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid customer id %q: %w", id, err)
	}
	payload, err := json.Marshal(map[string]any{
		"customer": map[string]any{"id": numericID, "tags": JoinTags(tags)},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/customers/"+id+".json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req, nil)
	return err
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.do(req, out)
	if err != nil {
		return "", err
	}
	return nextPageURL(resp.Header.Get("Link")), nil
}

func (c *Client) do(req *http.Request, out any) (*http.Response, error) {
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read shopify response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests {
			log.Printf("[Shopify] Rate limited on %s %s", req.Method, req.URL.Path)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 500)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("failed to decode shopify response: %w", err)
		}
	}
	return resp, nil
}

var linkNextRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPageURL extracts the rel="next" target of a Link header
func nextPageURL(link string) string {
	if m := linkNextRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}

// SplitTags parses Shopify's comma separated tag string
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags renders tags in Shopify's comma separated form
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// HasTag reports whether tags contains tag, ignoring case
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
