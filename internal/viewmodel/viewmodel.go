// Package viewmodel turns application state into render-ready structures.
// Nothing here performs I/O or mutates its input.
package viewmodel

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sozercan/review-sentiment/apimodels"
	"github.com/sozercan/review-sentiment/internal/app"
	"github.com/sozercan/review-sentiment/internal/health"
)

const NoDataHint = "Try analyzing some reviews first, then search for analytics."

// Slice is one segment of the sentiment distribution chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`

	// Percent is only meaningful when HasPercent is true
	Percent    int    `json:"percent"`
	HasPercent bool   `json:"hasPercent"`
	Label      string `json:"label"`
}

// Distribution builds the Positive/Negative slices. With no reviews at all
// the percentages are undefined and the labels carry just the name.
func Distribution(counts apimodels.SentimentCounts) []Slice {
	slices := []Slice{
		{Name: "Positive", Value: counts.Positive},
		{Name: "Negative", Value: counts.Negative},
	}

	total := counts.Positive + counts.Negative
	for i := range slices {
		slices[i].Label = slices[i].Name
		if total <= 0 {
			continue
		}
		pct := int(math.Round(float64(slices[i].Value) / float64(total) * 100))
		slices[i].Percent = pct
		slices[i].HasPercent = true
		slices[i].Label = slices[i].Name + " " + strconv.Itoa(pct) + "%"
	}
	return slices
}

// Trend returns the monthly series in the order the backend sent it.
func Trend(points []apimodels.MonthlyPoint) []apimodels.MonthlyPoint {
	if points == nil {
		return []apimodels.MonthlyPoint{}
	}
	out := make([]apimodels.MonthlyPoint, len(points))
	copy(out, points)
	return out
}

// ConfidenceValue is c*100 rounded to one decimal.
func ConfidenceValue(c float64) float64 {
	return math.Round(c*100*10) / 10
}

// Confidence formats c as a percentage with one decimal, e.g. "93.0%".
func Confidence(c float64) string {
	return strconv.FormatFloat(ConfidenceValue(c), 'f', 1, 64) + "%"
}

// SentimentLabel capitalizes the label for display.
func SentimentLabel(s apimodels.Sentiment) string {
	if s == "" {
		return ""
	}
	str := string(s)
	return strings.ToUpper(str[:1]) + str[1:]
}

// Formatter renders counts with locale thousands separators.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a Formatter for a BCP 47 tag, falling back to en-US
// when the tag does not parse.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}

type Badge struct {
	Status health.Status `json:"status"`
	Text   string        `json:"text"`
}

type StatCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type PredictionView struct {
	Error          string              `json:"error,omitempty"`
	Sentiment      apimodels.Sentiment `json:"sentiment,omitempty"`
	SentimentLabel string              `json:"sentimentLabel,omitempty"`
	Confidence     string              `json:"confidence,omitempty"`
	Timestamp      string              `json:"timestamp"`
}

type ReviewView struct {
	Text       string              `json:"text"`
	Sentiment  apimodels.Sentiment `json:"sentiment"`
	Confidence string              `json:"confidence"`
}

type AnalyticsView struct {
	GameName string `json:"gameName"`
	Error    string `json:"error,omitempty"`
	Hint     string `json:"hint,omitempty"`

	Summary       []StatCard               `json:"summary,omitempty"`
	Distribution  []Slice                  `json:"distribution,omitempty"`
	Trend         []apimodels.MonthlyPoint `json:"trend,omitempty"`
	RecentReviews []ReviewView             `json:"recentReviews,omitempty"`
}

type PredictPanel struct {
	Busy      bool            `json:"busy"`
	CanSubmit bool            `json:"canSubmit"`
	Result    *PredictionView `json:"result,omitempty"`
}

type AnalyticsPanel struct {
	Busy      bool           `json:"busy"`
	CanSearch bool           `json:"canSearch"`
	Query     string         `json:"query,omitempty"`
	Result    *AnalyticsView `json:"result,omitempty"`
}

// Page is everything a renderer needs for one paint.
type Page struct {
	ActiveView app.View       `json:"activeView"`
	Badge      Badge          `json:"badge"`
	Predict    PredictPanel   `json:"predict"`
	Analytics  AnalyticsPanel `json:"analytics"`
}

// Builder derives views; it only holds the count formatter.
type Builder struct {
	format *Formatter
}

func NewBuilder(locale string) *Builder {
	return &Builder{format: NewFormatter(locale)}
}

func (b *Builder) Prediction(r *app.PredictionResult) *PredictionView {
	if r == nil {
		return nil
	}
	if r.Error != "" {
		return &PredictionView{Error: r.Error, Timestamp: r.Timestamp}
	}
	return &PredictionView{
		Sentiment:      r.Sentiment,
		SentimentLabel: SentimentLabel(r.Sentiment),
		Confidence:     Confidence(r.Confidence),
		Timestamp:      r.Timestamp,
	}
}

func (b *Builder) Analytics(a *app.GameAnalytics) *AnalyticsView {
	if a == nil {
		return nil
	}
	if a.Error != "" {
		return &AnalyticsView{GameName: a.GameName, Error: a.Error, Hint: NoDataHint}
	}

	view := &AnalyticsView{
		GameName: a.GameName,
		Summary: []StatCard{
			{Title: "Total Reviews", Value: b.format.Count(a.TotalReviews)},
			{Title: "Positive Reviews", Value: b.format.Count(a.Sentiment.Positive)},
			{Title: "Negative Reviews", Value: b.format.Count(a.Sentiment.Negative)},
		},
		Distribution: Distribution(a.Sentiment),
		Trend:        Trend(a.MonthlyData),
	}
	for _, r := range a.RecentReviews {
		view.RecentReviews = append(view.RecentReviews, ReviewView{
			Text:       r.Text,
			Sentiment:  r.Sentiment,
			Confidence: Confidence(r.Confidence),
		})
	}
	return view
}

// Page builds the full view. predictText and searchText are the current
// input values, used only to derive button enablement.
func (b *Builder) Page(s app.State, predictText, searchText string) Page {
	return Page{
		ActiveView: s.View,
		Badge:      Badge{Status: s.APIStatus, Text: health.Badge(s.APIStatus)},
		Predict: PredictPanel{
			Busy:      s.Prediction.Busy(),
			CanSubmit: app.CanPredict(s, predictText),
			Result:    b.Prediction(s.Prediction.Result),
		},
		Analytics: AnalyticsPanel{
			Busy:      s.Analytics.Busy(),
			CanSearch: app.CanSearch(s, searchText),
			Query:     s.Analytics.Query,
			Result:    b.Analytics(s.Analytics.Result),
		},
	}
}
