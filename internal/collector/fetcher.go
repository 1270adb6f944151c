package collector

import "FundSentinel/internal/model"

// Fetcher defines the interface for fetching fund market data.
type Fetcher interface {
	FetchQuote(code string) (*model.FundQuoteSnapshot, error)
	FetchHistory(code string) ([]model.NavHistoryPoint, error)
	Search(key string) ([]model.FundSearchResult, error)
	Name() string
}
