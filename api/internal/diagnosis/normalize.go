package diagnosis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	NoDescription = "No description available."
	NoCommonNames = "N/A"
)

// Normalize maps the raw service response onto Result using only the
// top-ranked suggestion.
func Normalize(resp IdentifyResponse) Result {
	if len(resp.Suggestions) == 0 {
		return NotFound()
	}
	s := resp.Suggestions[0]

	pct := roundPercent(s.Probability)
	r := Result{
		Kind:              KindSuccess,
		Name:              strings.TrimSpace(s.PlantName),
		Confidence:        pct,
		ConfidencePercent: strconv.FormatFloat(pct, 'f', 2, 64) + "%",
		Description:       NoDescription,
		CommonNames:       NoCommonNames,
		Taxonomy:          Taxonomy{},
	}

	d := s.PlantDetails
	if d == nil {
		return r
	}
	if d.WikiDescription != nil {
		if v := strings.TrimSpace(d.WikiDescription.Value); v != "" {
			r.Description = v
		}
	}
	if names := strings.Join(d.CommonNames, ", "); strings.TrimSpace(names) != "" {
		r.CommonNames = names
	}
	if len(d.Synonyms) > 0 {
		r.Synonyms = append([]string(nil), d.Synonyms...)
	}
	for rank, v := range d.Taxonomy {
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			r.Taxonomy[rank] = s
		}
	}
	r.InfoURL = strings.TrimSpace(d.URL)
	return r
}

// roundPercent: 0.9432 -> 94.32, clamped to [0, 100].
func roundPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		p = 1
	}
	return math.Round(p*10000) / 100
}
