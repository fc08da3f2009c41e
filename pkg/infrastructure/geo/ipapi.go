package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"storefront/pkg/domain/model"
)

const (
	DefaultBaseURL = "https://ipapi.co"
	DefaultTimeout = time.Second
)

var ErrPrivateAddress = errors.New("address is not publicly routable")

// IPAPILocator resolves addresses through the ipapi.co JSON endpoint.
type IPAPILocator struct {
	baseURL string
	client  *http.Client
}

func NewIPAPILocator(baseURL string, timeout time.Duration) *IPAPILocator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &IPAPILocator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type ipapiResponse struct {
	City        string  `json:"city"`
	Region      string  `json:"region"`
	CountryName string  `json:"country_name"`
	Country     string  `json:"country"`
	Org         string  `json:"org"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Error       bool    `json:"error"`
	Reason      string  `json:"reason"`
}

func (l *IPAPILocator) Locate(ctx context.Context, ip string) (*model.Location, error) {
	if addr := net.ParseIP(ip); addr == nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return nil, ErrPrivateAddress
	}

	endpoint := fmt.Sprintf("%s/%s/json/", l.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build geo request")
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "geo lookup failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("geo lookup returned %d", resp.StatusCode)
	}
	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode geo response")
	}
	if body.Error {
		return nil, errors.Errorf("geo lookup rejected: %s", body.Reason)
	}

	country := body.CountryName
	if country == "" {
		country = body.Country
	}
	return &model.Location{
		IP:        ip,
		City:      body.City,
		Region:    body.Region,
		Country:   country,
		Org:       body.Org,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	}, nil
}
