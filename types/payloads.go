package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Scalar is a value the service sends either as a JSON number or a string
type Scalar struct {
	num   float64
	str   string
	isNum bool
}

// NumberScalar wraps a numeric value
func NumberScalar(v float64) *Scalar {
	return &Scalar{num: v, isNum: true}
}

// StringScalar wraps a string value
func StringScalar(v string) *Scalar {
	return &Scalar{str: v}
}

// Float returns the numeric value and whether the scalar holds a number
func (s *Scalar) Float() (float64, bool) {
	if s == nil || !s.isNum {
		return 0, false
	}
	return s.num, true
}

// String formats numbers without trailing zeros and returns strings as-is
func (s *Scalar) String() string {
	if s == nil {
		return ""
	}
	if s.isNum {
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	}
	return s.str
}

// Fixed formats numbers with prec decimals; strings are returned unchanged
func (s *Scalar) Fixed(prec int) string {
	if s == nil {
		return ""
	}
	if s.isNum {
		return strconv.FormatFloat(s.num, 'f', prec, 64)
	}
	return s.str
}

// UnmarshalJSON accepts numbers and strings; other JSON values keep their raw text
func (s *Scalar) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = *scalarFrom(v)
	return nil
}

// MarshalJSON writes the value back in its original JSON kind
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.isNum {
		return json.Marshal(s.num)
	}
	return json.Marshal(s.str)
}

func scalarFrom(v any) *Scalar {
	switch val := v.(type) {
	case float64:
		return NumberScalar(val)
	case float32:
		return NumberScalar(float64(val))
	case int:
		return NumberScalar(float64(val))
	case int64:
		return NumberScalar(float64(val))
	case string:
		return StringScalar(val)
	case nil:
		return &Scalar{}
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return StringScalar(fmt.Sprint(val))
		}
		return StringScalar(string(b))
	}
}

// FormatValue renders an arbitrary decoded JSON value for display
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "—"
	case *Scalar:
		if val == nil {
			return "—"
		}
		return val.String()
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// extraFields returns the members of a JSON object not named in known
func extraFields(data []byte, known ...string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// withExtra marshals v and merges extra members that v does not already set
func withExtra(v any, extra map[string]any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, taken := merged[k]; taken {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("marshal extra field %q: %w", k, err)
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}

// AnalyzeResult is the /analyze response; it is also the request body for
// the downstream simulate, report and linkedin calls, so unknown members are
// kept in Extra and written back out.
type AnalyzeResult struct {
	BusinessAnalysis string         `json:"business_analysis,omitempty"`
	MarketAnalysis   string         `json:"market_analysis,omitempty"`
	TechFeasibility  string         `json:"tech_feasibility,omitempty"`
	RiskAnalysis     string         `json:"risk_analysis,omitempty"`
	ValidationScore  *Scalar        `json:"validation_score,omitempty"`
	Extra            map[string]any `json:"-"`
}

type analyzeFields AnalyzeResult

var analyzeKeys = []string{"business_analysis", "market_analysis", "tech_feasibility", "risk_analysis", "validation_score"}

func (a *AnalyzeResult) UnmarshalJSON(data []byte) error {
	var fields analyzeFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, analyzeKeys...)
	if err != nil {
		return err
	}
	*a = AnalyzeResult(fields)
	a.Extra = extra
	return nil
}

func (a AnalyzeResult) MarshalJSON() ([]byte, error) {
	return withExtra(analyzeFields(a), a.Extra)
}

// Section is one titled block of analysis text
type Section struct {
	Key   string
	Label string
	Body  string
}

// Sections returns the analysis blocks in display order
func (a *AnalyzeResult) Sections() []Section {
	score := "—"
	if a.ValidationScore != nil {
		score = a.ValidationScore.Fixed(1)
	}
	return []Section{
		{Key: "business_analysis", Label: "Business Analysis", Body: a.BusinessAnalysis},
		{Key: "market_analysis", Label: "Market Analysis", Body: a.MarketAnalysis},
		{Key: "tech_feasibility", Label: "Tech Feasibility", Body: a.TechFeasibility},
		{Key: "risk_analysis", Label: "Risk Analysis", Body: a.RiskAnalysis},
		{Key: "validation_score", Label: "Validation Score", Body: score},
	}
}

// MarketPoint is one entry of the simulated growth series
type MarketPoint struct {
	Year  *Scalar  `json:"year,omitempty"`
	Value *float64 `json:"value,omitempty"`
	Label string   `json:"label,omitempty"`
}

// SimulateResult is the /simulate response
type SimulateResult struct {
	MarketGrowth       []MarketPoint  `json:"market_growth,omitempty"`
	SuccessProbability *float64       `json:"success_probability,omitempty"`
	Summary            string         `json:"summary,omitempty"`
	MarketSize         *Scalar        `json:"market_size,omitempty"`
	GrowthRate         *Scalar        `json:"growth_rate,omitempty"`
	BreakEven          *Scalar        `json:"break_even,omitempty"`
	ROI                *Scalar        `json:"roi,omitempty"`
	Extra              map[string]any `json:"-"`
}

type simulateFields SimulateResult

var simulateKeys = []string{"market_growth", "success_probability", "summary", "market_size", "growth_rate", "break_even", "roi"}

func (s *SimulateResult) UnmarshalJSON(data []byte) error {
	var fields simulateFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, simulateKeys...)
	if err != nil {
		return err
	}
	*s = SimulateResult(fields)
	s.Extra = extra
	return nil
}

func (s SimulateResult) MarshalJSON() ([]byte, error) {
	return withExtra(simulateFields(s), s.Extra)
}

// SeriesPoint is a chart-ready growth value
type SeriesPoint struct {
	Name  string
	Value float64
}

// DefaultSuccessProbability is shown when the service omits a probability
const DefaultSuccessProbability = 72.0

var illustrativeGrowth = []SeriesPoint{
	{Name: "Y1", Value: 20},
	{Name: "Y2", Value: 38},
	{Name: "Y3", Value: 62},
	{Name: "Y4", Value: 85},
	{Name: "Y5", Value: 110},
}

// GrowthSeries returns the market growth series, filling missing names and
// values, or an illustrative series when the service sent none.
func (s *SimulateResult) GrowthSeries() []SeriesPoint {
	if s == nil || len(s.MarketGrowth) == 0 {
		return append([]SeriesPoint(nil), illustrativeGrowth...)
	}

	points := make([]SeriesPoint, len(s.MarketGrowth))
	for i, p := range s.MarketGrowth {
		name := fmt.Sprintf("Y%d", i+1)
		if y := p.Year.String(); y != "" && y != "0" {
			name = y
		}
		value := float64(i*15 + 20)
		if p.Value != nil {
			value = *p.Value
		}
		points[i] = SeriesPoint{Name: name, Value: value}
	}
	return points
}

// Probability returns the success probability in percent
func (s *SimulateResult) Probability() float64 {
	if s == nil || s.SuccessProbability == nil {
		return DefaultSuccessProbability
	}
	return *s.SuccessProbability
}

// Figure is a labelled headline number
type Figure struct {
	Label string
	Value string
}

// Headlines returns the key simulation figures with illustrative fallbacks
func (s *SimulateResult) Headlines() []Figure {
	pick := func(v *Scalar, fallback string) string {
		if v == nil || v.String() == "" {
			return fallback
		}
		return v.String()
	}
	if s == nil {
		s = &SimulateResult{}
	}
	return []Figure{
		{Label: "Market Size", Value: pick(s.MarketSize, "$2.4B")},
		{Label: "Growth Rate", Value: pick(s.GrowthRate, "34% CAGR")},
		{Label: "Break-even", Value: pick(s.BreakEven, "18 months")},
		{Label: "ROI (5yr)", Value: pick(s.ROI, "340%")},
	}
}

// LinkedInResult is the /linkedin response
type LinkedInResult struct {
	Post    *string        `json:"post,omitempty"`
	Content *string        `json:"content,omitempty"`
	Extra   map[string]any `json:"-"`
}

type linkedInFields LinkedInResult

func (l *LinkedInResult) UnmarshalJSON(data []byte) error {
	var fields linkedInFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, "post", "content")
	if err != nil {
		return err
	}
	*l = LinkedInResult(fields)
	l.Extra = extra
	return nil
}

func (l LinkedInResult) MarshalJSON() ([]byte, error) {
	return withExtra(linkedInFields(l), l.Extra)
}

// Text resolves the post body: post, then content, then the whole payload
// encoded as JSON.
func (l *LinkedInResult) Text() string {
	if l.Post != nil {
		return *l.Post
	}
	if l.Content != nil {
		return *l.Content
	}
	b, err := json.Marshal(l)
	if err != nil {
		return ""
	}
	return string(b)
}

// AutopostResult is the /autopost response
type AutopostResult struct {
	Success *bool          `json:"success,omitempty"`
	Message string         `json:"message,omitempty"`
	Extra   map[string]any `json:"-"`
}

type autopostFields AutopostResult

func (a *AutopostResult) UnmarshalJSON(data []byte) error {
	var fields autopostFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := extraFields(data, "success", "message")
	if err != nil {
		return err
	}
	*a = AutopostResult(fields)
	a.Extra = extra
	return nil
}

func (a AutopostResult) MarshalJSON() ([]byte, error) {
	return withExtra(autopostFields(a), a.Extra)
}

// Metrics is the /mcp/metrics response. The three known counters are typed;
// everything else is kept in Extra.
type Metrics struct {
	AgentExecutions   *Scalar        `mapstructure:"agent_executions"`
	SystemPerformance *Scalar        `mapstructure:"system_performance"`
	RequestCounts     *Scalar        `mapstructure:"request_counts"`
	Extra             map[string]any `mapstructure:",remain"`

	raw map[string]any
}

var scalarType = reflect.TypeOf(Scalar{})

func scalarHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != scalarType {
		return data, nil
	}
	return *scalarFrom(data), nil
}

// DecodeMetrics builds Metrics from the decoded JSON object
func DecodeMetrics(raw map[string]any) (*Metrics, error) {
	m := &Metrics{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(scalarHook),
		Result:     m,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}

	m.raw = make(map[string]any, len(raw))
	for k, v := range raw {
		m.raw[k] = v
	}
	return m, nil
}

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := DecodeMetrics(raw)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.All())
}

// All returns every metric as received
func (m *Metrics) All() map[string]any {
	out := make(map[string]any, len(m.raw))
	for k, v := range m.raw {
		out[k] = v
	}
	return out
}

// Cards returns the three headline counters in display order. A counter the
// service did not send falls back to the empty-value dash.
func (m *Metrics) Cards() []Figure {
	return []Figure{
		{Label: "Agent Executions", Value: cardValue(m.AgentExecutions)},
		{Label: "System Performance", Value: cardValue(m.SystemPerformance)},
		{Label: "Request Count", Value: cardValue(m.RequestCounts)},
	}
}

func cardValue(s *Scalar) string {
	if v := s.String(); v != "" {
		return v
	}
	return FormatValue(nil)
}

// ExtraKeys returns the names of the metrics outside the three cards, sorted
func (m *Metrics) ExtraKeys() []string {
	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HumanizeKey turns snake_case metric names into words
func HumanizeKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// ImageKind distinguishes the two shapes the /image endpoint can return
type ImageKind string

const (
	ImageURL    ImageKind = "url"
	ImageBinary ImageKind = "binary"
)

// ImageResult is either a remote URL or a locally stored binary image
type ImageResult struct {
	Kind        ImageKind `json:"kind"`
	URL         string    `json:"url,omitempty"`
	Handle      string    `json:"handle,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
}

// Ref returns a dereferenceable reference to the image
func (r *ImageResult) Ref() string {
	if r.Kind == ImageURL {
		return r.URL
	}
	return r.Handle
}

// Document is a stored binary artifact such as the PDF report
type Document struct {
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
}
