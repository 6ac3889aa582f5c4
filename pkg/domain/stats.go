package domain

// Stats summarizes a quote collection: totals, per-source and per-season
// counts, and the length distribution of the quote texts.
type Stats struct {
	TotalQuotes       int            `json:"total_quotes"`
	QuotesWithSeason  int            `json:"quotes_with_season"`
	QuotesWithEpisode int            `json:"quotes_with_episode"`
	QuotesWithContext int            `json:"quotes_with_context"`
	Sources           map[string]int `json:"sources"`
	Seasons           map[int]int    `json:"seasons"`
	AvgQuoteLength    int            `json:"avg_quote_length,omitempty"`
	ShortestQuote     int            `json:"shortest_quote,omitempty"`
	LongestQuote      int            `json:"longest_quote,omitempty"`
}
