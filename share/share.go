// Package share serializes an itinerary into a URL-safe token so a plan can
// be handed around without server-side persistence.
package share

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"trip_itinerary_planner/itinerary"
)

// Encode packs the itinerary into a URL-safe base64 token of its JSON form.
func Encode(it *itinerary.Itinerary) (string, error) {
	b, err := json.Marshal(it)
	if err != nil {
		return "", fmt.Errorf("encode share payload: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode reverses Encode. Standard base64 is accepted too, since tokens may
// have been produced by older clients.
func Decode(token string) (*itinerary.Itinerary, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("empty share token")
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		b, err = base64.StdEncoding.DecodeString(token)
	}
	if err != nil {
		return nil, fmt.Errorf("decode share token: %w", err)
	}
	var it itinerary.Itinerary
	if err := json.Unmarshal(b, &it); err != nil {
		return nil, fmt.Errorf("decode share payload: %w", err)
	}
	return &it, nil
}
