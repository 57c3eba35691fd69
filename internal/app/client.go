package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sozercan/review-sentiment/apimodels"
	"github.com/sozercan/review-sentiment/internal/health"
)

// DefaultTimestampLayout matches the en-US locale date-time string.
const DefaultTimestampLayout = "1/2/2006, 3:04:05 PM"

var errEmptyResponse = errors.New("gateway returned no payload")

// Gateway is the backend surface the controllers drive.
type Gateway interface {
	health.Checker
	Predict(ctx context.Context, text, gameName string) (*apimodels.PredictionResponse, error)
	FetchAnalytics(ctx context.Context, gameName string) (*apimodels.AnalyticsResponse, error)
}

// Client owns the application state. Every event goes through Reduce under a
// single lock, which plays the role of the UI event loop; network effects run
// on their own goroutines and report back as completion events.
type Client struct {
	gateway Gateway
	monitor *health.Monitor
	now     func() time.Time
	layout  string

	// notifyMu keeps listener notifications in transition order
	notifyMu  sync.Mutex
	mu        sync.Mutex
	state     State
	listeners []func(State)

	inflight sync.WaitGroup
}

type ClientOption func(*Client)

func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithTimestampLayout sets the layout used to stamp failed predictions.
func WithTimestampLayout(layout string) ClientOption {
	return func(c *Client) {
		if layout != "" {
			c.layout = layout
		}
	}
}

func NewClient(gateway Gateway, opts ...ClientOption) *Client {
	c := &Client{
		gateway: gateway,
		monitor: health.NewMonitor(gateway),
		now:     time.Now,
		layout:  DefaultTimestampLayout,
		state:   NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs the one-shot health check and records its outcome. Calling it
// again does not repeat the check.
func (c *Client) Start(ctx context.Context) health.Status {
	status := c.monitor.Check(ctx)
	c.Dispatch(ctx, HealthResolved{Status: status})
	return status
}

// Dispatch applies ev and starts whatever network call the transition
// requires. It reports whether a call was started.
func (c *Client) Dispatch(ctx context.Context, ev Event) bool {
	c.notifyMu.Lock()

	c.mu.Lock()
	next, effect := Reduce(c.state, ev)
	c.state = next
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	c.notifyMu.Unlock()

	if effect == nil {
		return false
	}

	// In-flight calls are never cancelled, so detach them from the caller.
	ctx = context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.Dispatch(ctx, c.execute(ctx, effect))
	}()
	return true
}

// Subscribe registers fn to receive every new state. fn runs synchronously
// after each transition and must not call Dispatch.
func (c *Client) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners[:len(c.listeners):len(c.listeners)], fn)
}

func (c *Client) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until every in-flight call has settled.
func (c *Client) Wait() {
	c.inflight.Wait()
}

func (c *Client) SelectView(v View) {
	c.Dispatch(context.Background(), ViewSelected{View: v})
}

func (c *Client) View() View {
	return c.Snapshot().View
}

func (c *Client) APIStatus() health.Status {
	return c.Snapshot().APIStatus
}

func (c *Client) Predictions() *PredictionController {
	return &PredictionController{client: c}
}

func (c *Client) Analytics() *AnalyticsController {
	return &AnalyticsController{client: c}
}

// execute performs effect and converts its outcome, including a panic in the
// gateway, into the matching completion event.
func (c *Client) execute(ctx context.Context, effect Effect) (ev Event) {
	switch e := effect.(type) {
	case PredictEffect:
		defer func() {
			if r := recover(); r != nil {
				ev = c.predictionFailed(e.Generation, fmt.Errorf("gateway panic: %v", r))
			}
		}()

		slog.Info("Submitting review for prediction", "game", e.GameName, "generation", e.Generation)
		resp, err := c.gateway.Predict(ctx, e.Text, e.GameName)
		if err == nil && resp == nil {
			err = errEmptyResponse
		}
		if err != nil {
			return c.predictionFailed(e.Generation, err)
		}
		slog.Debug("Prediction completed", "sentiment", resp.Sentiment, "confidence", resp.Confidence)
		return PredictionSucceeded{Generation: e.Generation, Response: *resp}

	case FetchAnalyticsEffect:
		defer func() {
			if r := recover(); r != nil {
				ev = c.analyticsFailed(e.Generation, fmt.Errorf("gateway panic: %v", r))
			}
		}()

		slog.Info("Fetching game analytics", "game", e.GameName, "generation", e.Generation)
		resp, err := c.gateway.FetchAnalytics(ctx, e.GameName)
		if err == nil && resp == nil {
			err = errEmptyResponse
		}
		if err != nil {
			return c.analyticsFailed(e.Generation, err)
		}
		slog.Debug("Analytics fetched", "game", e.GameName, "totalReviews", resp.TotalReviews)
		return AnalyticsSucceeded{Generation: e.Generation, Response: *resp}
	}

	panic(fmt.Sprintf("app: unknown effect %T", effect))
}

func (c *Client) predictionFailed(gen uint64, err error) Event {
	slog.Error("Error predicting sentiment", "error", err)
	return PredictionFailed{
		Generation: gen,
		Err:        err,
		Timestamp:  c.now().Format(c.layout),
	}
}

func (c *Client) analyticsFailed(gen uint64, err error) Event {
	slog.Error("Error fetching game analytics", "error", err)
	return AnalyticsFailed{Generation: gen, Err: err}
}

// PredictionController submits reviews. At most one prediction is in flight.
type PredictionController struct {
	client *Client
}

// Submit classifies text. It is a silent no-op, returning false, when text is
// blank, a prediction is already pending, or the backend is not connected.
func (p *PredictionController) Submit(ctx context.Context, text, gameName string) bool {
	return p.client.Dispatch(ctx, PredictionSubmitted{Text: text, GameName: gameName})
}

func (p *PredictionController) Busy() bool {
	return p.client.Snapshot().Prediction.Busy()
}

func (p *PredictionController) Phase() Phase {
	return p.client.Snapshot().Prediction.Phase
}

// Result is the latest settled prediction, or nil.
func (p *PredictionController) Result() *PredictionResult {
	return p.client.Snapshot().Prediction.Result
}

// AnalyticsController looks up per-game analytics. It is independent of the
// prediction controller.
type AnalyticsController struct {
	client *Client
}

// Search fetches analytics for gameName. Blank names and searches made while
// one is pending are ignored.
func (a *AnalyticsController) Search(ctx context.Context, gameName string) bool {
	return a.client.Dispatch(ctx, AnalyticsSearched{GameName: gameName})
}

func (a *AnalyticsController) Busy() bool {
	return a.client.Snapshot().Analytics.Busy()
}

func (a *AnalyticsController) Phase() Phase {
	return a.client.Snapshot().Analytics.Phase
}

func (a *AnalyticsController) Result() *GameAnalytics {
	return a.client.Snapshot().Analytics.Result
}
