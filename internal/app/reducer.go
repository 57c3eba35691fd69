package app

import (
	"strings"

	"github.com/sozercan/review-sentiment/apimodels"
	"github.com/sozercan/review-sentiment/internal/backend"
	"github.com/sozercan/review-sentiment/internal/health"
)

// Event is anything that can change State.
type Event interface {
	isEvent()
}

type HealthResolved struct {
	Status health.Status
}

type ViewSelected struct {
	View View
}

type PredictionSubmitted struct {
	Text     string
	GameName string
}

type PredictionSucceeded struct {
	Generation uint64
	Response   apimodels.PredictionResponse
}

type PredictionFailed struct {
	Generation uint64
	Err        error

	// Client-side time of the failure, already formatted
	Timestamp string
}

type AnalyticsSearched struct {
	GameName string
}

type AnalyticsSucceeded struct {
	Generation uint64
	Response   apimodels.AnalyticsResponse
}

type AnalyticsFailed struct {
	Generation uint64
	Err        error
}

func (HealthResolved) isEvent()      {}
func (ViewSelected) isEvent()        {}
func (PredictionSubmitted) isEvent() {}
func (PredictionSucceeded) isEvent() {}
func (PredictionFailed) isEvent()    {}
func (AnalyticsSearched) isEvent()   {}
func (AnalyticsSucceeded) isEvent()  {}
func (AnalyticsFailed) isEvent()     {}

// Effect is a network call the runtime must perform after a transition.
type Effect interface {
	isEffect()
}

type PredictEffect struct {
	Generation uint64
	Text       string
	GameName   string
}

type FetchAnalyticsEffect struct {
	Generation uint64
	GameName   string
}

func (PredictEffect) isEffect()        {}
func (FetchAnalyticsEffect) isEffect() {}

// Reduce applies ev to s. It has no side effects; any network call the
// transition requires is returned as an Effect.
//
// Completion events whose Generation does not match the slot's current
// generation are stale and leave the state untouched.
func Reduce(s State, ev Event) (State, Effect) {
	switch e := ev.(type) {
	case HealthResolved:
		if s.APIStatus != health.Checking || e.Status == health.Checking {
			return s, nil
		}
		s.APIStatus = e.Status
		return s, nil

	case ViewSelected:
		if e.View.Valid() {
			s.View = e.View
		}
		return s, nil

	case PredictionSubmitted:
		if !CanPredict(s, e.Text) {
			return s, nil
		}
		gameName := e.GameName
		if gameName == "" {
			gameName = apimodels.UnknownGame
		}
		s.Prediction = PredictionSlot{
			Phase:      PhasePending,
			Generation: s.Prediction.Generation + 1,
		}
		return s, PredictEffect{
			Generation: s.Prediction.Generation,
			Text:       strings.TrimSpace(e.Text),
			GameName:   gameName,
		}

	case PredictionSucceeded:
		if !s.Prediction.Busy() || e.Generation != s.Prediction.Generation {
			return s, nil
		}
		s.Prediction.Phase = PhaseSucceeded
		s.Prediction.Result = &PredictionResult{
			Sentiment:  e.Response.Sentiment,
			Confidence: e.Response.Confidence,
			Timestamp:  e.Response.Timestamp,
		}
		return s, nil

	case PredictionFailed:
		if !s.Prediction.Busy() || e.Generation != s.Prediction.Generation {
			return s, nil
		}
		s.Prediction.Phase = PhaseFailed
		s.Prediction.Result = &PredictionResult{
			Error:     PredictionFailureMessage,
			Timestamp: e.Timestamp,
		}
		return s, nil

	case AnalyticsSearched:
		if !CanSearch(s, e.GameName) {
			return s, nil
		}
		name := strings.TrimSpace(e.GameName)
		s.Analytics = AnalyticsSlot{
			Phase:      PhasePending,
			Generation: s.Analytics.Generation + 1,
			Query:      name,
		}
		return s, FetchAnalyticsEffect{
			Generation: s.Analytics.Generation,
			GameName:   name,
		}

	case AnalyticsSucceeded:
		if !s.Analytics.Busy() || e.Generation != s.Analytics.Generation {
			return s, nil
		}
		s.Analytics.Phase = PhaseSucceeded
		s.Analytics.Result = &GameAnalytics{
			GameName:      s.Analytics.Query,
			TotalReviews:  e.Response.TotalReviews,
			Sentiment:     e.Response.Sentiment,
			MonthlyData:   e.Response.MonthlyData,
			RecentReviews: e.Response.RecentReviews,
		}
		return s, nil

	case AnalyticsFailed:
		if !s.Analytics.Busy() || e.Generation != s.Analytics.Generation {
			return s, nil
		}
		msg := AnalyticsFailureMessage
		if backend.IsNotFound(e.Err) {
			msg = AnalyticsNotFoundMessage
		}
		s.Analytics.Phase = PhaseFailed
		s.Analytics.Result = &GameAnalytics{
			GameName: s.Analytics.Query,
			Error:    msg,
		}
		return s, nil
	}

	return s, nil
}

// CanPredict reports whether a prediction for text would be dispatched.
func CanPredict(s State, text string) bool {
	return strings.TrimSpace(text) != "" &&
		!s.Prediction.Busy() &&
		s.APIStatus == health.Connected
}

// CanSearch reports whether a search for gameName would be dispatched.
func CanSearch(s State, gameName string) bool {
	return strings.TrimSpace(gameName) != "" && !s.Analytics.Busy()
}
