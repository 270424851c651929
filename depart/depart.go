// Package depart suggests departure-point candidates from small embedded
// datasets: major station names searched by name or kana, and postal codes
// searched by prefix.
package depart

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed stations.json postcodes.json
var dataFS embed.FS

const maxCandidates = 10

type station struct {
	Name string `json:"name"`
	Kana string `json:"kana"`
}

type postcode struct {
	Zip  string `json:"zip"`
	Pref string `json:"pref"`
	City string `json:"city"`
}

// Index holds the loaded lookup data.
type Index struct {
	stations  []station
	postcodes []postcode
}

// Load parses the embedded datasets. It fails only if the embedded files are
// corrupt, which would be a build defect.
func Load() (*Index, error) {
	idx := &Index{}
	if err := loadJSON("stations.json", &idx.stations); err != nil {
		return nil, err
	}
	if err := loadJSON("postcodes.json", &idx.postcodes); err != nil {
		return nil, err
	}
	return idx, nil
}

func loadJSON(name string, v any) error {
	b, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Search returns up to ten candidates for the keyword. Station mode matches
// the name or kana as a case-insensitive substring; postal mode matches the
// zip code prefix and renders "zip pref city" lines.
func (idx *Index) Search(mode, keyword string) []string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}

	var out []string
	switch mode {
	case "postal":
		for _, p := range idx.postcodes {
			if strings.HasPrefix(p.Zip, keyword) {
				out = append(out, p.Zip+" "+p.Pref+p.City)
				if len(out) == maxCandidates {
					break
				}
			}
		}
	default: // station
		needle := strings.ToLower(keyword)
		for _, s := range idx.stations {
			if strings.Contains(strings.ToLower(s.Name), needle) ||
				strings.Contains(strings.ToLower(s.Kana), needle) {
				out = append(out, s.Name)
				if len(out) == maxCandidates {
					break
				}
			}
		}
	}
	return out
}
