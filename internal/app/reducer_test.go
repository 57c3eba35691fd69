package app

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/review-sentiment/apimodels"
	"github.com/sozercan/review-sentiment/internal/backend"
	"github.com/sozercan/review-sentiment/internal/health"
)

func connectedState() State {
	s := NewState()
	s.APIStatus = health.Connected
	return s
}

func TestReduceHealthResolvedOnce(t *testing.T) {
	s, eff := Reduce(NewState(), HealthResolved{Status: health.Connected})
	assert.Nil(t, eff)
	assert.Equal(t, health.Connected, s.APIStatus)

	s, _ = Reduce(s, HealthResolved{Status: health.Disconnected})
	assert.Equal(t, health.Connected, s.APIStatus, "status must not change after the initial resolution")
}

func TestReducePredictionPreconditions(t *testing.T) {
	pending := connectedState()
	pending.Prediction = PredictionSlot{Phase: PhasePending, Generation: 3}

	disconnected := NewState()
	disconnected.APIStatus = health.Disconnected

	notLoaded := NewState()
	notLoaded.APIStatus = health.ModelNotLoaded

	tests := []struct {
		name  string
		state State
		text  string
	}{
		{name: "empty text", state: connectedState(), text: ""},
		{name: "whitespace text", state: connectedState(), text: " \t\n "},
		{name: "already pending", state: pending, text: "great game"},
		{name: "disconnected", state: disconnected, text: "great game"},
		{name: "model not loaded", state: notLoaded, text: "great game"},
		{name: "still checking", state: NewState(), text: "great game"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, eff := Reduce(tt.state, PredictionSubmitted{Text: tt.text})
			assert.Nil(t, eff)
			assert.Equal(t, tt.state, next)
		})
	}
}

func TestReducePredictionSubmitted(t *testing.T) {
	s := connectedState()
	s.Prediction = PredictionSlot{
		Phase:      PhaseSucceeded,
		Generation: 1,
		Result:     &PredictionResult{Sentiment: apimodels.Negative, Confidence: 0.6, Timestamp: "earlier"},
	}

	next, eff := Reduce(s, PredictionSubmitted{Text: "  This game is amazing  "})
	require.IsType(t, PredictEffect{}, eff)
	assert.Equal(t, PredictEffect{Generation: 2, Text: "This game is amazing", GameName: "Unknown"}, eff)

	assert.Equal(t, PhasePending, next.Prediction.Phase)
	assert.True(t, next.Prediction.Busy())
	assert.Nil(t, next.Prediction.Result, "prior result should be cleared on submit")
}

func TestReducePredictionSucceeded(t *testing.T) {
	s, eff := Reduce(connectedState(), PredictionSubmitted{Text: "This game is amazing", GameName: "Hades"})
	gen := eff.(PredictEffect).Generation
	assert.Equal(t, "Hades", eff.(PredictEffect).GameName)

	resp := apimodels.PredictionResponse{Sentiment: apimodels.Positive, Confidence: 0.93, Timestamp: "2024-01-01 10:00"}
	s, eff = Reduce(s, PredictionSucceeded{Generation: gen, Response: resp})
	assert.Nil(t, eff)

	assert.Equal(t, PhaseSucceeded, s.Prediction.Phase)
	assert.False(t, s.Prediction.Busy())
	assert.Equal(t, &PredictionResult{
		Sentiment:  apimodels.Positive,
		Confidence: 0.93,
		Timestamp:  "2024-01-01 10:00",
	}, s.Prediction.Result)
}

func TestReducePredictionFailedUsesSingleMessage(t *testing.T) {
	failures := []error{
		errors.New("dial tcp: connection refused"),
		&backend.StatusError{StatusCode: http.StatusInternalServerError},
		&backend.StatusError{StatusCode: http.StatusBadRequest, Message: "No text provided"},
		&backend.StatusError{StatusCode: http.StatusNotFound},
	}

	for _, failure := range failures {
		t.Run(failure.Error(), func(t *testing.T) {
			s, eff := Reduce(connectedState(), PredictionSubmitted{Text: "meh"})
			gen := eff.(PredictEffect).Generation

			s, _ = Reduce(s, PredictionFailed{Generation: gen, Err: failure, Timestamp: "1/1/2024, 10:00:00 AM"})
			assert.Equal(t, PhaseFailed, s.Prediction.Phase)
			assert.False(t, s.Prediction.Busy())
			assert.Equal(t, &PredictionResult{
				Error:     PredictionFailureMessage,
				Timestamp: "1/1/2024, 10:00:00 AM",
			}, s.Prediction.Result)
		})
	}
}

func TestReduceDiscardsStaleCompletions(t *testing.T) {
	s, eff := Reduce(connectedState(), PredictionSubmitted{Text: "first"})
	gen := eff.(PredictEffect).Generation

	stale := PredictionSucceeded{Generation: gen - 1, Response: apimodels.PredictionResponse{Sentiment: apimodels.Negative}}
	next, _ := Reduce(s, stale)
	assert.Equal(t, s, next)

	s, eff = Reduce(connectedState(), AnalyticsSearched{GameName: "Foo"})
	agen := eff.(FetchAnalyticsEffect).Generation
	next, _ = Reduce(s, AnalyticsFailed{Generation: agen + 1, Err: errors.New("late")})
	assert.Equal(t, s, next)

	// a completion that arrives after the slot settled is also ignored
	settled, _ := Reduce(s, AnalyticsSucceeded{Generation: agen})
	again, _ := Reduce(settled, AnalyticsFailed{Generation: agen, Err: errors.New("dup")})
	assert.Equal(t, settled, again)
}

func TestReduceAnalyticsPreconditions(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		next, eff := Reduce(NewState(), AnalyticsSearched{GameName: name})
		assert.Nil(t, eff)
		assert.Equal(t, NewState(), next)
	}

	pending := NewState()
	pending.Analytics = AnalyticsSlot{Phase: PhasePending, Generation: 1, Query: "Foo"}
	next, eff := Reduce(pending, AnalyticsSearched{GameName: "Bar"})
	assert.Nil(t, eff)
	assert.Equal(t, pending, next)
}

func TestReduceAnalyticsIgnoresAPIStatus(t *testing.T) {
	_, eff := Reduce(NewState(), AnalyticsSearched{GameName: "Foo"})
	assert.NotNil(t, eff, "analytics search is not gated on the health check")
}

func TestReduceAnalyticsNotFound(t *testing.T) {
	s, eff := Reduce(NewState(), AnalyticsSearched{GameName: " Foo "})
	require.Equal(t, FetchAnalyticsEffect{Generation: 1, GameName: "Foo"}, eff)

	notFound := fmt.Errorf("fetch: %w", &backend.StatusError{StatusCode: http.StatusNotFound})
	s, _ = Reduce(s, AnalyticsFailed{Generation: 1, Err: notFound})

	assert.Equal(t, PhaseFailed, s.Analytics.Phase)
	assert.Equal(t, &GameAnalytics{GameName: "Foo", Error: AnalyticsNotFoundMessage}, s.Analytics.Result)
}

func TestReduceAnalyticsOtherFailures(t *testing.T) {
	failures := []error{
		errors.New("connection refused"),
		&backend.StatusError{StatusCode: http.StatusInternalServerError},
		&backend.StatusError{StatusCode: http.StatusBadGateway},
	}
	for _, failure := range failures {
		s, _ := Reduce(NewState(), AnalyticsSearched{GameName: "Foo"})
		s, _ = Reduce(s, AnalyticsFailed{Generation: 1, Err: failure})
		assert.Equal(t, &GameAnalytics{GameName: "Foo", Error: AnalyticsFailureMessage}, s.Analytics.Result)
		assert.NotEqual(t, AnalyticsNotFoundMessage, s.Analytics.Result.Error)
	}
}

func TestReduceAnalyticsSucceededUsesSearchedName(t *testing.T) {
	s, _ := Reduce(NewState(), AnalyticsSearched{GameName: "Bar"})
	resp := apimodels.AnalyticsResponse{
		TotalReviews: 100,
		Sentiment:    apimodels.SentimentCounts{Positive: 80, Negative: 20},
		MonthlyData: []apimodels.MonthlyPoint{
			{Month: "Jun", Positive: 10, Negative: 2},
			{Month: "Feb", Positive: 4, Negative: 1},
		},
		RecentReviews: []apimodels.RecentReview{{Text: "fun", Sentiment: apimodels.Positive, Confidence: 0.88}},
	}
	s, _ = Reduce(s, AnalyticsSucceeded{Generation: 1, Response: resp})

	require.NotNil(t, s.Analytics.Result)
	assert.Equal(t, PhaseSucceeded, s.Analytics.Phase)
	assert.Equal(t, "Bar", s.Analytics.Result.GameName)
	assert.Equal(t, 100, s.Analytics.Result.TotalReviews)
	assert.Equal(t, resp.MonthlyData, s.Analytics.Result.MonthlyData, "monthly data keeps backend order")
	assert.Empty(t, s.Analytics.Result.Error)
}

func TestReduceViewSelectionKeepsResults(t *testing.T) {
	s := connectedState()
	s.Prediction = PredictionSlot{Phase: PhaseSucceeded, Generation: 1, Result: &PredictionResult{Sentiment: apimodels.Positive}}
	s.Analytics = AnalyticsSlot{Phase: PhaseFailed, Generation: 1, Query: "Foo", Result: &GameAnalytics{GameName: "Foo", Error: AnalyticsNotFoundMessage}}

	next, _ := Reduce(s, ViewSelected{View: ViewAnalytics})
	assert.Equal(t, ViewAnalytics, next.View)
	assert.Equal(t, s.Prediction, next.Prediction)
	assert.Equal(t, s.Analytics, next.Analytics)

	next, _ = Reduce(next, ViewSelected{View: ViewPredict})
	assert.Equal(t, ViewPredict, next.View)
	assert.Equal(t, s.Prediction, next.Prediction)
	assert.Equal(t, s.Analytics, next.Analytics)

	next, _ = Reduce(next, ViewSelected{View: "settings"})
	assert.Equal(t, ViewPredict, next.View)
}

func TestReduceControllersAreIndependent(t *testing.T) {
	s, eff := Reduce(connectedState(), PredictionSubmitted{Text: "good"})
	require.NotNil(t, eff)

	s, eff = Reduce(s, AnalyticsSearched{GameName: "Foo"})
	require.NotNil(t, eff, "a pending prediction must not block a search")
	assert.True(t, s.Prediction.Busy())
	assert.True(t, s.Analytics.Busy())
}
