package chart

import "encoding/json"

// ElementType tags chart elements in the output tree.
const ElementType = "plotly_chart"

// widgetDiscriminator feeds widget identity so charts never collide with
// other element types carrying the same key.
const widgetDiscriminator = "plotly_chart_widget"

// InlineFigure is the serialized figure document and surface config.
type InlineFigure struct {
	Spec   string `json:"spec"`
	Config string `json:"config"`
}

// Spec is the chart element handed to the surface.  Exactly one of Figure
// and URL is set.
type Spec struct {
	ID                string        `json:"id"`
	Figure            *InlineFigure `json:"figure,omitempty"`
	URL               string        `json:"url,omitempty"`
	Theme             Theme         `json:"theme"`
	UseContainerWidth bool          `json:"useContainerWidth"`
	OnSelectEnabled   bool          `json:"onSelectEnabled"`
	FormID            string        `json:"formId"`
}

// identity returns the bytes that feed the widget id.  The id field is
// excluded so the computed id does not depend on itself.
func (s Spec) identity() ([]byte, error) {
	s.ID = ""
	return json.Marshal(s)
}
