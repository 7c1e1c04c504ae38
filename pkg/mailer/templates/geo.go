package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

var ErrNonPublicIP = errors.New("geo: ip is not publicly routable")

// Geo is a resolved IP location.
type Geo struct {
	City     string
	Region   string
	Country  string
	Timezone string
}

type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (Geo, error)
}

func FormatGeo(g Geo) string {
	var parts []string
	for _, s := range []string{g.City, g.Region, g.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// IPAPIResolver implements GeoResolver using ip-api.com. Successful lookups
// are memoized for the lifetime of the resolver.
type IPAPIResolver struct {
	Client  *http.Client
	BaseURL string

	mu    sync.Mutex
	cache map[string]Geo
}

func NewIPAPIResolver() *IPAPIResolver {
	return &IPAPIResolver{
		Client:  &http.Client{Timeout: 2 * time.Second},
		BaseURL: "http://ip-api.com/json/",
	}
}

func (r *IPAPIResolver) Lookup(ctx context.Context, ip string) (Geo, error) {
	ip = strings.TrimSpace(ip)
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Geo{}, fmt.Errorf("geo: invalid ip %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return Geo{}, ErrNonPublicIP
	}

	r.mu.Lock()
	if g, ok := r.cache[ip]; ok {
		r.mu.Unlock()
		return g, nil
	}
	r.mu.Unlock()

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	base := r.BaseURL
	if base == "" {
		base = "http://ip-api.com/json/"
	}

	url := base + ip + "?fields=status,message,country,regionName,city,timezone"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Geo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Geo{}, err
	}
	defer resp.Body.Close()

	var body struct {
		Status     string `json:"status"`
		Message    string `json:"message"`
		Country    string `json:"country"`
		RegionName string `json:"regionName"`
		City       string `json:"city"`
		Timezone   string `json:"timezone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Geo{}, err
	}
	if !strings.EqualFold(body.Status, "success") {
		return Geo{}, fmt.Errorf("geo lookup failed: %s", body.Message)
	}
	g := Geo{City: body.City, Region: body.RegionName, Country: body.Country, Timezone: body.Timezone}

	r.mu.Lock()
	if r.cache == nil {
		r.cache = make(map[string]Geo)
	}
	r.cache[ip] = g
	r.mu.Unlock()
	return g, nil
}
