package apimodels

// Sentiment is the binary label produced by the classification service.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
)

// Valid reports whether s is one of the labels the service is allowed to return.
func (s Sentiment) Valid() bool {
	return s == Positive || s == Negative
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Overall service status, e.g. "healthy"
	Status string `json:"status,omitempty"`

	// "loaded" when the model is ready to serve predictions
	ModelStatus string `json:"model_status"`

	// Device the model runs on (cpu, cuda)
	Device string `json:"device,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
}

// PredictionResponse is returned by POST /predict-sentiment.
type PredictionResponse struct {
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`

	// Server-assigned, already formatted for display
	Timestamp string `json:"timestamp"`
}

// AnalyticsResponse is returned by GET /game-analytics/{name}.
type AnalyticsResponse struct {
	TotalReviews  int             `json:"totalReviews"`
	Sentiment     SentimentCounts `json:"sentiment"`
	MonthlyData   []MonthlyPoint  `json:"monthlyData"`
	RecentReviews []RecentReview  `json:"recentReviews"`
}

type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// MonthlyPoint is one bucket of the monthly trend, in the order the backend returns them.
type MonthlyPoint struct {
	Month    string `json:"month"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

type RecentReview struct {
	Text       string    `json:"text"`
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
}

// ErrorResponse is the body the backend sends alongside non-2xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}
