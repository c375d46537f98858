package services

import (
	"context"
	"errors"
	"os"
	"time"

	"googlemaps.github.io/maps"
)

var (
	mapsClient  *maps.Client
	ErrNoAPIKey = errors.New("GOOGLE_MAPS_API_KEY environment variable not set")
)

// PlaceSuggestion is a simplified place result for appointment locations
type PlaceSuggestion struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	PlaceID string `json:"place_id"`
}

// InitMapsClient initializes the Google Maps client
func InitMapsClient() error {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		return ErrNoAPIKey
	}

	var err error
	mapsClient, err = maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return err
	}

	return nil
}

// SearchPlaces finds clinics, pharmacies and other venues matching the query,
// for the appointment location picker
func SearchPlaces(query string) ([]PlaceSuggestion, error) {
	if mapsClient == nil {
		if err := InitMapsClient(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	request := &maps.TextSearchRequest{
		Query: query,
	}

	response, err := mapsClient.TextSearch(ctx, request)
	if err != nil {
		return nil, err
	}

	suggestions := make([]PlaceSuggestion, 0, len(response.Results))
	for _, result := range response.Results {
		suggestions = append(suggestions, PlaceSuggestion{
			Name:    result.Name,
			Address: result.FormattedAddress,
			PlaceID: result.PlaceID,
		})
	}

	return suggestions, nil
}
