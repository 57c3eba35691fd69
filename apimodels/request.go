package apimodels

// UnknownGame is sent as game_name when the user leaves the field empty.
const UnknownGame = "Unknown"

type PredictionRequest struct {
	// Review text to classify
	Text string `json:"text"`

	// Game the review belongs to, used by the backend for analytics
	GameName string `json:"game_name"`
}
