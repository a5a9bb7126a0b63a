package external

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ListingSummary decorates a conversation that is scoped to a listing. The
// chat core stores only the listing id; title, location and price live in the
// listing service.
type ListingSummary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
	ImageURL string `json:"image_url"`
}

// ListingCatalog is the narrow contract to the listing collaborator.
type ListingCatalog interface {
	GetListing(id uint) (*ListingSummary, error)
}

// HTTPListingCatalog resolves listing summaries from the listing service's
// internal API.
type HTTPListingCatalog struct {
	baseURL string
	client  *http.Client
}

func NewHTTPListingCatalog(baseURL string) *HTTPListingCatalog {
	return &HTTPListingCatalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPListingCatalog) GetListing(id uint) (*ListingSummary, error) {
	url := fmt.Sprintf("%s/internal/listings/%d", c.baseURL, id)

	resp, err := c.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing service returned status %d", resp.StatusCode)
	}

	var listing ListingSummary
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}
	return &listing, nil
}
