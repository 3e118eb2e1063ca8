package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchCustomersFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("page_info") == "" {
			if got := r.URL.Query().Get("query"); got != `tag:"Quack"` {
				t.Errorf("query = %q", got)
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s/customers/search.json?page_info=p2&limit=250>; rel="next"`, srv.URL))
			fmt.Fprint(w, `{"customers":[{"id":1,"email":"a@example.com","tags":"Quack, vip"}]}`)
			return
		}
		fmt.Fprint(w, `{"customers":[{"id":2,"email":"b@example.com","tags":""}]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "tok", srv.Client())
	customers, err := c.SearchCustomersByTag(context.Background(), "Quack", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(customers) != 2 || customers[1].IDString() != "2" {
		t.Fatalf("customers = %+v", customers)
	}
	if tags := customers[0].TagList(); len(tags) != 2 || tags[1] != "vip" {
		t.Errorf("tags = %v", tags)
	}
}

func TestSetCustomerTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/customers/42.json" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Customer struct {
				ID   int64  `json:"id"`
				Tags string `json:"tags"`
			} `json:"customer"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Customer.ID != 42 || body.Customer.Tags != "vip, Quack" {
			t.Errorf("body = %+v", body)
		}
		fmt.Fprint(w, `{"customer":{"id":42}}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "tok", nil)
	if err := c.SetCustomerTags(context.Background(), "42", []string{"vip", "Quack"}); err != nil {
		t.Fatal(err)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"errors":"Exceeded 2 calls per second"}`)
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL(srv.URL, "tok", nil).ListOrders(context.Background(), nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v", err)
	}
}

func TestNextPageURL(t *testing.T) {
	link := `<https://s/a?page_info=prev>; rel="previous", <https://s/a?page_info=next>; rel="next"`
	if got := nextPageURL(link); got != "https://s/a?page_info=next" {
		t.Errorf("got %q", got)
	}
	if got := nextPageURL(""); got != "" {
		t.Errorf("got %q", got)
	}
}
