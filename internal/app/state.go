package app

import (
	"github.com/sozercan/review-sentiment/apimodels"
	"github.com/sozercan/review-sentiment/internal/health"
)

const (
	PredictionFailureMessage = "Failed to connect to sentiment analysis API. Please check if the backend is running."
	AnalyticsNotFoundMessage = "No reviews found for this game in the database"
	AnalyticsFailureMessage  = "Failed to fetch analytics. Please check if the backend is running."
)

// View is the active top-level tab.
type View string

const (
	ViewPredict   View = "predict"
	ViewAnalytics View = "analytics"
)

func (v View) Valid() bool {
	return v == ViewPredict || v == ViewAnalytics
}

// Phase is the lifecycle of one controller's operation.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// PredictionResult holds either the classification triple or Error, never both.
type PredictionResult struct {
	Sentiment  apimodels.Sentiment `json:"sentiment,omitempty"`
	Confidence float64             `json:"confidence"`
	Timestamp  string              `json:"timestamp"`
	Error      string              `json:"error,omitempty"`
}

// GameAnalytics is the stored outcome of a search. When Error is set only
// GameName is meaningful.
type GameAnalytics struct {
	GameName      string                    `json:"gameName"`
	TotalReviews  int                       `json:"totalReviews"`
	Sentiment     apimodels.SentimentCounts `json:"sentiment"`
	MonthlyData   []apimodels.MonthlyPoint  `json:"monthlyData,omitempty"`
	RecentReviews []apimodels.RecentReview  `json:"recentReviews,omitempty"`
	Error         string                    `json:"error,omitempty"`
}

// PredictionSlot is the prediction controller's state. Result is nil while
// idle or pending.
type PredictionSlot struct {
	Phase      Phase             `json:"phase"`
	Generation uint64            `json:"generation"`
	Result     *PredictionResult `json:"result,omitempty"`
}

func (s PredictionSlot) Busy() bool {
	return s.Phase == PhasePending
}

type AnalyticsSlot struct {
	Phase      Phase  `json:"phase"`
	Generation uint64 `json:"generation"`

	// Query is the trimmed name of the latest dispatched search
	Query  string         `json:"query,omitempty"`
	Result *GameAnalytics `json:"result,omitempty"`
}

func (s AnalyticsSlot) Busy() bool {
	return s.Phase == PhasePending
}

// State is the whole application state. Results are replaced, never mutated,
// so copies of State may share them.
type State struct {
	View       View           `json:"view"`
	APIStatus  health.Status  `json:"apiStatus"`
	Prediction PredictionSlot `json:"prediction"`
	Analytics  AnalyticsSlot  `json:"analytics"`
}

func NewState() State {
	return State{
		View:       ViewPredict,
		APIStatus:  health.Checking,
		Prediction: PredictionSlot{Phase: PhaseIdle},
		Analytics:  AnalyticsSlot{Phase: PhaseIdle},
	}
}
