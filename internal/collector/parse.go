package collector

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"FundSentinel/internal/model"
)

// toFiniteNumber coerces the string-typed numeric fields the quote endpoint
// returns. The computation core assumes its inputs are already normalized,
// so all coercion happens here.
func toFiniteNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return model.Num(n)
}

// extractBetween returns the text between the first occurrence of left and
// the following right, or "" when either marker is missing.
func extractBetween(text, left, right string) string {
	start := strings.Index(text, left)
	if start < 0 {
		return ""
	}
	start += len(left)
	end := strings.Index(text[start:], right)
	if end < 0 {
		return ""
	}
	return text[start : start+end]
}

func stripBOM(text string) string {
	return strings.TrimPrefix(text, "\ufeff")
}

// quotePayload is the JSON body inside the jsonpgz(...) wrapper. Every
// numeric field arrives as a string.
type quotePayload struct {
	FundCode string `json:"fundcode"`
	Name     string `json:"name"`
	NavDate  string `json:"jzrq"`
	Nav      string `json:"dwjz"`
	Estimate string `json:"gsz"`
	EstPct   string `json:"gszzl"`
	EstTime  string `json:"gztime"`
}

var errNoQuote = errors.New("no quote payload in response")

// parseQuoteJS parses the intraday quote endpoint's JS response, which wraps
// a JSON object in a jsonpgz(...) call.
func parseQuoteJS(text string) (*model.FundQuoteSnapshot, error) {
	body := extractBetween(stripBOM(text), "jsonpgz(", ");")
	if body == "" {
		return nil, errNoQuote
	}
	var p quotePayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, err
	}
	if p.FundCode == "" {
		return nil, errNoQuote
	}
	return &model.FundQuoteSnapshot{
		Code:              p.FundCode,
		Name:              p.Name,
		ConfirmedNav:      toFiniteNumber(p.Nav),
		ConfirmedNavDate:  p.NavDate,
		EstimateNav:       toFiniteNumber(p.Estimate),
		EstimateChangePct: toFiniteNumber(p.EstPct),
		EstimateTime:      p.EstTime,
		FetchedAt:         time.Now(),
	}, nil
}

var netWorthTrendRe = regexp.MustCompile(`var\s+Data_netWorthTrend\s*=\s*(\[[\s\S]*?\])\s*;`)

type trendPoint struct {
	X            int64       `json:"x"` // epoch milliseconds
	Y            float64     `json:"y"` // unit NAV
	EquityReturn json.Number `json:"equityReturn"`
}

// cst renders history dates in China Standard Time; the raw points are
// epoch milliseconds at 00:00 CST and UTC formatting would shift them back
// a day.
var cst = time.FixedZone("CST", 8*3600)

// parseHistoryJS extracts the NAV history series from the fund detail JS
// bundle, ascending by date and deduplicated.
func parseHistoryJS(text string) ([]model.NavHistoryPoint, error) {
	m := netWorthTrendRe.FindStringSubmatch(stripBOM(text))
	if m == nil {
		return nil, errors.New("no net worth trend in response")
	}
	var raw []trendPoint
	if err := json.Unmarshal([]byte(m[1]), &raw); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	points := make([]model.NavHistoryPoint, 0, len(raw))
	for _, p := range raw {
		if p.X <= 0 {
			continue
		}
		date := time.UnixMilli(p.X).In(cst).Format("2006-01-02")
		if seen[date] {
			continue
		}
		seen[date] = true
		point := model.NavHistoryPoint{Date: date, Nav: p.Y}
		if v, err := p.EquityReturn.Float64(); err == nil {
			point.ChangePct = model.Num(v)
		}
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

var tencentQuoteRe = regexp.MustCompile(`v_s_([a-z]{2})(\d{6})="([^"]*)"`)

// parseTencentChangePct parses the compact stock quote payload into a map
// of stock code to day change percent.
func parseTencentChangePct(text string) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range tencentQuoteRe.FindAllStringSubmatch(text, -1) {
		parts := strings.Split(m[3], "~")
		if len(parts) <= 5 {
			continue
		}
		if pct, err := strconv.ParseFloat(parts[5], 64); err == nil {
			out[m[2]] = pct
		}
	}
	return out
}
