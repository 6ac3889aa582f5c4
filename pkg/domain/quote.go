package domain

// Quote represents one attributed quotation collected from a web source.
//
// Text is already cleaned (whitespace collapsed, outer quote marks stripped,
// typographic punctuation normalized) before the quote enters the pipeline.
// Season and Episode use 0 as "unknown"; a quote with Episode set is expected
// to have Season set as well, which the enricher and sort order rely on.
type Quote struct {
	// Text is the quotation itself.
	Text string `bson:"quote" json:"quote"`

	// Season is the season number the quote was spoken in, 0 if unknown.
	Season int `bson:"season,omitempty" json:"season,omitempty"`

	// Episode is the episode number within the season, 0 if unknown.
	Episode int `bson:"episode,omitempty" json:"episode,omitempty"`

	// EpisodeTitle is the human-readable episode title, when known.
	EpisodeTitle string `bson:"episode_title,omitempty" json:"episode_title,omitempty"`

	// Context is free-text scene context (who was being addressed, etc.).
	Context string `bson:"context,omitempty" json:"context,omitempty"`

	// SourceURL is the URL the quote was collected from.
	SourceURL string `bson:"source_url" json:"source_url"`

	// SourceName is the human-readable name of the source.
	SourceName string `bson:"source_name" json:"source_name"`
}

// Tagged reports whether the quote already carries season attribution.
func (q Quote) Tagged() bool {
	return q.Season > 0
}
