package diagnosis

// Fixed request shape of the identification service.
var (
	DefaultModifiers = []string{"similar_images"}
	DefaultDetails   = []string{
		"common_names",
		"url",
		"wiki_description",
		"taxonomy",
		"synonyms",
	}
)

// IdentifyRequest — тело POST /v2/identify.
type IdentifyRequest struct {
	Images       []string `json:"images"`
	Modifiers    []string `json:"modifiers"`
	PlantDetails []string `json:"plant_details"`
}

// NewIdentifyRequest собирает запрос для одного изображения (base64 без префикса).
func NewIdentifyRequest(encoded string) IdentifyRequest {
	return IdentifyRequest{
		Images:       []string{encoded},
		Modifiers:    append([]string(nil), DefaultModifiers...),
		PlantDetails: append([]string(nil), DefaultDetails...),
	}
}

// ----- Response (минимально необходимая часть) -----
// Only Normalize reads these types; everything downstream works with Result.

type IdentifyResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

type Suggestion struct {
	PlantName    string        `json:"plant_name"`
	Probability  float64       `json:"probability"`
	PlantDetails *PlantDetails `json:"plant_details,omitempty"`
}

type PlantDetails struct {
	CommonNames     []string         `json:"common_names,omitempty"`
	URL             string           `json:"url,omitempty"`
	WikiDescription *WikiDescription `json:"wiki_description,omitempty"`
	Taxonomy        map[string]any   `json:"taxonomy,omitempty"`
	Synonyms        []string         `json:"synonyms,omitempty"`
}

type WikiDescription struct {
	Value    string `json:"value"`
	Citation string `json:"citation,omitempty"`
}
