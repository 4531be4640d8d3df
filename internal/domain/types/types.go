// Package types contains common types used across the application
package types

// Prediction is the read shape of one scored order.
type Prediction struct {
	RequestID       string   `json:"request_id"`
	Hours           float64  `json:"hours"`
	Days            int      `json:"days"`
	RemainingHours  int      `json:"remaining_hours"`
	Tier            string   `json:"tier"`
	BackgroundColor string   `json:"background_color"`
	TextColor       string   `json:"text_color"`
	Suggestions     []string `json:"suggestions"`
	Summary         string   `json:"summary"`
}

// ModelInfo describes the served model
type ModelInfo struct {
	Algorithm   string  `json:"algorithm"`
	RMSEHours   float64 `json:"rmse_hours"`
	R2          float64 `json:"r2"`
	TrackingURI string  `json:"tracking_uri,omitempty"`
	ModelURI    string  `json:"model_uri,omitempty"`
	ServingURL  string  `json:"serving_url"`
}

// DefaultModelInfo returns the card of the tuned random forest the service
// was built around. Coordinates are filled in by the caller.
func DefaultModelInfo() ModelInfo {
	return ModelInfo{
		Algorithm: "RandomForest (HP tuned)",
		RMSEHours: 22,
		R2:        0.82,
	}
}
