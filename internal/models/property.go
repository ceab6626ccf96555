package models

// PropertyType distinguishes the two supported residential categories.
type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeApartment PropertyType = "apartment"
)

// LevelInput carries a quality attribute either as a 1-5 score or as free
// text. Both absent means unknown; the pipeline falls back to a neutral
// score in that case.
type LevelInput struct {
	Score *int   `json:"score,omitempty"`
	Text  string `json:"text,omitempty"`
}

// HasScore reports whether a usable numeric score is present.
func (l LevelInput) HasScore() bool {
	return l.Score != nil && *l.Score >= 1 && *l.Score <= 5
}

// PropertyInput holds the user-supplied attributes of the property to be
// valued. Optional attributes are pointers; the pipeline substitutes
// estimates for missing ones instead of rejecting the request.
type PropertyInput struct {
	Type             PropertyType `json:"type"`
	LivingArea       *float64     `json:"living_area,omitempty"`
	PlotArea         *float64     `json:"plot_area,omitempty"`
	ConstructionYear *int         `json:"construction_year,omitempty"`
	SubType          string       `json:"sub_type,omitempty"`
	Modernization    LevelInput   `json:"modernization,omitempty"`
	Energy           LevelInput   `json:"energy,omitempty"`
	Fitout           LevelInput   `json:"fitout,omitempty"`
}
