package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"lifeline/config"
	"lifeline/models"
	"lifeline/utils"

	"github.com/sirupsen/logrus"
)

// Geocoder resolves coordinates to a street address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (*models.Address, error)
}

// RoutePlanner estimates road distance and travel time between two points.
type RoutePlanner interface {
	RouteETA(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*models.RouteEstimate, error)
}

// LocationService talks to the Google Maps web APIs. Every call is bounded
// by the collaborator timeout; callers fall back to haversine arithmetic
// when a call fails, so an outage degrades accuracy, never availability.
type LocationService struct {
	apiKey     string
	httpClient *http.Client
}

func NewLocationService(cfg *config.Config) *LocationService {
	return &LocationService{
		apiKey: cfg.GoogleMapsAPIKey,
		httpClient: &http.Client{
			Timeout: cfg.CollaboratorTimeout,
		},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

func (ls *LocationService) ReverseGeocode(ctx context.Context, latitude, longitude float64) (*models.Address, error) {
	if ls.apiKey == "" {
		return nil, fmt.Errorf("geocoding not configured")
	}

	endpoint := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/geocode/json?latlng=%s&key=%s",
		url.QueryEscape(fmt.Sprintf("%f,%f", latitude, longitude)),
		url.QueryEscape(ls.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := ls.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "OK" || len(decoded.Results) == 0 {
		return nil, fmt.Errorf("geocoding status %s", decoded.Status)
	}

	address := &models.Address{Address: decoded.Results[0].FormattedAddress}
	for _, component := range decoded.Results[0].AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "locality":
				address.City = component.LongName
			case "administrative_area_level_1":
				address.State = component.LongName
			case "postal_code":
				address.Pincode = component.LongName
			}
		}
	}

	return address, nil
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (ls *LocationService) RouteETA(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*models.RouteEstimate, error) {
	if ls.apiKey == "" {
		return nil, fmt.Errorf("routing not configured")
	}

	endpoint := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/distancematrix/json?origins=%f,%f&destinations=%f,%f&key=%s",
		fromLat, fromLon, toLat, toLon, url.QueryEscape(ls.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := ls.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing returned status %d", resp.StatusCode)
	}

	var decoded distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "OK" || len(decoded.Rows) == 0 || len(decoded.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("routing status %s", decoded.Status)
	}

	element := decoded.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, fmt.Errorf("routing element status %s", element.Status)
	}

	return &models.RouteEstimate{
		DistanceKm:      float64(element.Distance.Value) / 1000.0,
		DurationMinutes: int(time.Duration(element.Duration.Value) * time.Second / time.Minute),
		Estimated:       false,
	}, nil
}

// ResolveAddress reverse-geocodes with a "lat, lon" string fallback so an
// address is always available for dispatch messages.
func ResolveAddress(ctx context.Context, geocoder Geocoder, latitude, longitude float64) string {
	if geocoder != nil {
		if address, err := geocoder.ReverseGeocode(ctx, latitude, longitude); err == nil && address.Address != "" {
			return address.Address
		} else if err != nil {
			logrus.Debugf("Reverse geocoding failed, using raw coordinates: %v", err)
		}
	}
	return fmt.Sprintf("%.4f, %.4f", latitude, longitude)
}

// EstimateRoute asks the route planner, falling back to straight-line
// distance at city traffic speed.
func EstimateRoute(ctx context.Context, planner RoutePlanner, fromLat, fromLon, toLat, toLon float64) *models.RouteEstimate {
	if planner != nil {
		if estimate, err := planner.RouteETA(ctx, fromLat, fromLon, toLat, toLon); err == nil {
			return estimate
		} else {
			logrus.Debugf("Route planning failed, using haversine estimate: %v", err)
		}
	}

	distance := utils.HaversineKm(fromLat, fromLon, toLat, toLon)
	return &models.RouteEstimate{
		DistanceKm:      distance,
		DurationMinutes: utils.EstimateTravelMinutes(distance),
		Estimated:       true,
	}
}
