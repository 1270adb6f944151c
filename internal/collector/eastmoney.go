package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"FundSentinel/internal/model"
)

// Default upstream hosts. Overridable for tests and mirrors.
const (
	defaultQuoteBaseURL  = "https://fundgz.1234567.com.cn"
	defaultDetailBaseURL = "https://fund.eastmoney.com"
	defaultF10BaseURL    = "https://fundf10.eastmoney.com"
	defaultSearchBaseURL = "https://fundsuggest.eastmoney.com"
	defaultStockBaseURL  = "https://qt.gtimg.cn"
)

var fundCodeRe = regexp.MustCompile(`^\d{6}$`)

// IsValidFundCode reports whether code is a 6-digit fund identifier.
func IsValidFundCode(code string) bool {
	return fundCodeRe.MatchString(code)
}

// EastmoneyFetcher implements Fetcher against the Eastmoney fund endpoints:
// an intraday estimate feed, the per-fund detail JS bundle (NAV history),
// the F10 archive (top stock holdings) and the fund search API.
type EastmoneyFetcher struct {
	QuoteBaseURL  string
	DetailBaseURL string
	F10BaseURL    string
	SearchBaseURL string
	StockBaseURL  string

	// SelfEstimate enriches snapshots with an alternate estimate derived
	// from the fund's top stock holdings and their live day changes.
	SelfEstimate bool

	Client *http.Client
}

// NewEastmoneyFetcher creates a fetcher with optional proxy support.
func NewEastmoneyFetcher(proxyURL string, selfEstimate bool) *EastmoneyFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &EastmoneyFetcher{
		QuoteBaseURL:  defaultQuoteBaseURL,
		DetailBaseURL: defaultDetailBaseURL,
		F10BaseURL:    defaultF10BaseURL,
		SearchBaseURL: defaultSearchBaseURL,
		StockBaseURL:  defaultStockBaseURL,
		SelfEstimate:  selfEstimate,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *EastmoneyFetcher) Name() string { return "eastmoney" }

func (f *EastmoneyFetcher) fetchText(endpoint string) (string, error) {
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "FundSentinel/1.0")
	req.Header.Set("Referer", "https://fund.eastmoney.com/")
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchQuote fetches the intraday quote snapshot for one fund.
func (f *EastmoneyFetcher) FetchQuote(code string) (*model.FundQuoteSnapshot, error) {
	if !IsValidFundCode(code) {
		return nil, fmt.Errorf("invalid fund code %q", code)
	}
	endpoint := fmt.Sprintf("%s/js/%s.js?rt=%d", f.QuoteBaseURL, code, time.Now().UnixMilli())
	text, err := f.fetchText(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", code, err)
	}
	snap, err := parseQuoteJS(text)
	if err != nil {
		return nil, fmt.Errorf("parse quote %s: %w", code, err)
	}
	if f.SelfEstimate {
		// Best effort; the primary estimate stands on failure.
		f.attachSelfEstimate(snap)
	}
	return snap, nil
}

// FetchHistory fetches the full NAV history series for one fund, ascending
// by date and deduplicated.
func (f *EastmoneyFetcher) FetchHistory(code string) ([]model.NavHistoryPoint, error) {
	if !IsValidFundCode(code) {
		return nil, fmt.Errorf("invalid fund code %q", code)
	}
	endpoint := fmt.Sprintf("%s/pingzhongdata/%s.js?v=%d", f.DetailBaseURL, code, time.Now().UnixMilli())
	text, err := f.fetchText(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", code, err)
	}
	points, err := parseHistoryJS(text)
	if err != nil {
		return nil, fmt.Errorf("parse history %s: %w", code, err)
	}
	return points, nil
}

// searchResponse is the fund search API's JSON shape.
type searchResponse struct {
	Datas []struct {
		Code         string `json:"CODE"`
		Name         string `json:"NAME"`
		FundBaseInfo struct {
			FType string `json:"FTYPE"`
		} `json:"FundBaseInfo"`
	} `json:"Datas"`
}

// Search proxies the fund search API.
func (f *EastmoneyFetcher) Search(key string) ([]model.FundSearchResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/FundSearch/api/FundSearchAPI.ashx?m=1&key=%s&_=%d",
		f.SearchBaseURL, url.QueryEscape(key), time.Now().UnixMilli())
	text, err := f.fetchText(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fund search: %w", err)
	}
	var sr searchResponse
	if err := json.Unmarshal([]byte(stripBOM(text)), &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	results := make([]model.FundSearchResult, 0, len(sr.Datas))
	for _, d := range sr.Datas {
		if !IsValidFundCode(d.Code) {
			continue
		}
		results = append(results, model.FundSearchResult{
			Code: d.Code,
			Name: d.Name,
			Type: d.FundBaseInfo.FType,
		})
	}
	return results, nil
}

// stockWeight is one top-holding row from the F10 archive.
type stockWeight struct {
	Code     string
	RatioPct float64
}

var (
	f10ContentRe = regexp.MustCompile(`content:\s*"([\s\S]*?)"\s*,\s*(?:arryear|curyear)`)
	tableRowRe   = regexp.MustCompile(`<tr[\s\S]*?</tr>`)
	tableCellRe  = regexp.MustCompile(`<td[\s\S]*?</td>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
)

// parseTopHoldings scrapes stock codes and portfolio weights out of the F10
// holdings table HTML.
func parseTopHoldings(content string) []stockWeight {
	tbody := extractBetween(content, "<tbody>", "</tbody>")
	if tbody == "" {
		return nil
	}
	var out []stockWeight
	for _, row := range tableRowRe.FindAllString(tbody, -1) {
		cols := tableCellRe.FindAllString(row, -1)
		if len(cols) < 7 {
			continue
		}
		code := strings.TrimSpace(htmlTagRe.ReplaceAllString(cols[1], ""))
		ratioText := strings.TrimSpace(htmlTagRe.ReplaceAllString(cols[6], ""))
		ratio, err := strconv.ParseFloat(strings.TrimSuffix(ratioText, "%"), 64)
		if err != nil || !fundCodeRe.MatchString(code) {
			continue
		}
		out = append(out, stockWeight{Code: code, RatioPct: ratio})
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

func tencentPrefix(code string) string {
	switch {
	case strings.HasPrefix(code, "6"), strings.HasPrefix(code, "9"):
		return "sh"
	case strings.HasPrefix(code, "4"), strings.HasPrefix(code, "8"):
		return "bj"
	default:
		return "sz"
	}
}

// attachSelfEstimate computes an alternate NAV estimate from the fund's top
// stock holdings: the weighted sum of each stock's live day change, applied
// to the confirmed NAV. Coverage is the summed portfolio weight, so the
// resolver only trusts it when enough of the portfolio is priced.
func (f *EastmoneyFetcher) attachSelfEstimate(snap *model.FundQuoteSnapshot) {
	if snap.ConfirmedNav == nil {
		return
	}
	endpoint := fmt.Sprintf("%s/FundArchivesDatas.aspx?type=jjcc&code=%s&topline=10&year=&month=&rt=%d",
		f.F10BaseURL, snap.Code, time.Now().UnixMilli())
	text, err := f.fetchText(endpoint)
	if err != nil {
		return
	}
	m := f10ContentRe.FindStringSubmatch(stripBOM(text))
	if m == nil {
		return
	}
	content := strings.NewReplacer(`\"`, `"`, `\/`, `/`, `\\`, `\`).Replace(m[1])
	weights := parseTopHoldings(content)
	if len(weights) == 0 {
		return
	}

	symbols := make([]string, 0, len(weights))
	for _, w := range weights {
		symbols = append(symbols, "s_"+tencentPrefix(w.Code)+w.Code)
	}
	quoteText, err := f.fetchText(fmt.Sprintf("%s/q=%s", f.StockBaseURL, strings.Join(symbols, ",")))
	if err != nil {
		return
	}
	changes := parseTencentChangePct(quoteText)

	var weightedChange, coverage float64
	for _, w := range weights {
		pct, ok := changes[w.Code]
		if !ok {
			continue
		}
		weightedChange += w.RatioPct / 100 * pct
		coverage += w.RatioPct / 100
	}
	if coverage == 0 {
		return
	}
	snap.EstimateCoverage = model.Num(coverage)
	snap.AltEstimateChangePct = model.Num(weightedChange)
	snap.AltEstimateNav = model.Num(*snap.ConfirmedNav * (1 + weightedChange/100))
}
