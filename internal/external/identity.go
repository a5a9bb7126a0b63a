package external

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// UserProfile is the display slice of a user the identity service exposes to
// the chat core. The core never stores it; it is fetched at read time to
// decorate conversation summaries.
type UserProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// UserDirectory is the narrow contract to the identity collaborator.
type UserDirectory interface {
	GetProfiles(ids []uint) (map[uint]UserProfile, error)
}

// HTTPUserDirectory resolves profiles from the identity service's internal
// API.
type HTTPUserDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPUserDirectory(baseURL string) *HTTPUserDirectory {
	return &HTTPUserDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *HTTPUserDirectory) GetProfiles(ids []uint) (map[uint]UserProfile, error) {
	if len(ids) == 0 {
		return map[uint]UserProfile{}, nil
	}

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	url := fmt.Sprintf("%s/internal/users?ids=%s", d.baseURL, strings.Join(parts, ","))

	resp, err := d.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var profiles []UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, err
	}

	result := make(map[uint]UserProfile, len(profiles))
	for _, p := range profiles {
		result[p.ID] = p
	}
	return result, nil
}
