// Package venues finds restaurants near an Indonesian administrative area
// using OpenStreetMap: Nominatim geocodes the area, Overpass lists amenities.
package venues

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dkeye/bukber/internal/config"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	idPrefix          = "r_osm_"
	radiusLabel       = "10KM Radius"
	cafeHighlight     = "Cafe/Coffee"
	fallbackHighlight = "Kuliner Lokal"
)

type OSMClient struct {
	httpClient   *http.Client
	nominatimURL string
	overpassURL  string
	userAgent    string
	radiusM      int
	limit        int
	shuffle      func(n int, swap func(i, j int))
}

func NewOSMClient(cfg config.VenuesConfig) *OSMClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 10
	}
	return &OSMClient{
		httpClient:   &http.Client{Timeout: timeout},
		nominatimURL: cfg.NominatimURL,
		overpassURL:  cfg.OverpassURL,
		userAgent:    cfg.UserAgent,
		radiusM:      cfg.RadiusM,
		limit:        limit,
		shuffle:      rand.Shuffle,
	}
}

type point struct {
	Lat float64
	Lon float64
}

type nominatimHit struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

// overpassCenter is set for ways and relations by "out center".
type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Lookup makes a single attempt. Every failure, including an empty result,
// is reported as domain.ErrUpstreamUnavailable.
func (c *OSMClient) Lookup(ctx context.Context, loc domain.Location) ([]domain.Venue, error) {
	center, err := c.geocode(ctx, loc)
	if err != nil {
		return nil, err
	}
	elements, err := c.amenities(ctx, center)
	if err != nil {
		return nil, err
	}

	named := make([]overpassElement, 0, len(elements))
	for _, e := range elements {
		if e.Tags["name"] != "" {
			named = append(named, e)
		}
	}
	if len(named) == 0 {
		return nil, fmt.Errorf("%w: no named amenities near %s", domain.ErrUpstreamUnavailable, loc.City)
	}
	c.shuffle(len(named), func(i, j int) { named[i], named[j] = named[j], named[i] })
	if len(named) > c.limit {
		named = named[:c.limit]
	}

	out := make([]domain.Venue, 0, len(named))
	for _, e := range named {
		out = append(out, toVenue(e, center))
	}
	log.Debug().Str("module", "adapters.venues").Str("city", loc.City).Int("found", len(out)).Msg("osm lookup done")
	return out, nil
}

func toVenue(e overpassElement, fallback point) domain.Venue {
	lat, lon := fallback.Lat, fallback.Lon
	switch {
	case e.Lat != nil && e.Lon != nil:
		lat, lon = *e.Lat, *e.Lon
	case e.Center != nil:
		lat, lon = e.Center.Lat, e.Center.Lon
	}

	highlight := e.Tags["cuisine"]
	if highlight == "" {
		highlight = fallbackHighlight
		if e.Tags["amenity"] == "cafe" {
			highlight = cafeHighlight
		}
	}
	return domain.Venue{
		ID:             idPrefix + strconv.FormatInt(e.ID, 10),
		Name:           e.Tags["name"],
		Lat:            &lat,
		Lon:            &lon,
		PriceRange:     radiusLabel,
		MenuHighlights: highlight,
	}
}

func (c *OSMClient) geocode(ctx context.Context, loc domain.Location) (point, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", fmt.Sprintf("%s, %s, %s, Indonesia", loc.District, loc.City, loc.Province))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nominatimURL+"?"+q.Encode(), nil)
	if err != nil {
		return point{}, fmt.Errorf("%w: nominatim request: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept-Language", "id")
	req.Header.Set("User-Agent", c.userAgent)

	var hits []nominatimHit
	if err := c.do(req, &hits); err != nil {
		return point{}, fmt.Errorf("nominatim: %w", err)
	}
	if len(hits) == 0 {
		return point{}, fmt.Errorf("%w: nominatim found nothing for %q", domain.ErrUpstreamUnavailable, q.Get("q"))
	}
	lat, errLat := strconv.ParseFloat(hits[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(hits[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return point{}, fmt.Errorf("%w: nominatim returned bad coordinates", domain.ErrUpstreamUnavailable)
	}
	return point{Lat: lat, Lon: lon}, nil
}

func (c *OSMClient) amenities(ctx context.Context, at point) ([]overpassElement, error) {
	form := url.Values{}
	form.Set("data", overpassQuery(at, c.radiusM))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: overpass request: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	var resp overpassResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("overpass: %w", err)
	}
	if len(resp.Elements) == 0 {
		return nil, fmt.Errorf("%w: overpass returned no elements", domain.ErrUpstreamUnavailable)
	}
	return resp.Elements, nil
}

func overpassQuery(at point, radiusM int) string {
	filter := fmt.Sprintf(`["amenity"~"restaurant|cafe|food_court|fast_food"](around:%d,%s,%s);`,
		radiusM, strconv.FormatFloat(at.Lat, 'f', -1, 64), strconv.FormatFloat(at.Lon, 'f', -1, 64))
	return "[out:json][timeout:15];\n(\n" +
		"  node" + filter + "\n" +
		"  way" + filter + "\n" +
		"  relation" + filter + "\n" +
		");\nout center 30;"
}

func (c *OSMClient) do(req *http.Request, into any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		log.Error().Str("module", "adapters.venues").Int("status", resp.StatusCode).Str("body", string(body)).Str("url", req.URL.Host).Msg("osm upstream error")
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("%w: decode: %v", domain.ErrUpstreamUnavailable, err)
	}
	return nil
}
