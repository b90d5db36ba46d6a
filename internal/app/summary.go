package app

// Summary counts the outcome of one run. Skipped counts articles already stored; Failed
// counts articles that could not be fetched, extracted, or persisted.
type Summary struct {
	Sources       int `json:"sources"`
	SourcesFailed int `json:"sources_failed"`
	Candidates    int `json:"candidates"`
	Scraped       int `json:"scraped"`
	Saved         int `json:"saved"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
}

func (s *Summary) add(o Summary) {
	s.Sources += o.Sources
	s.SourcesFailed += o.SourcesFailed
	s.Candidates += o.Candidates
	s.Scraped += o.Scraped
	s.Saved += o.Saved
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// AllSourcesFailed reports whether no source got far enough to produce results.
func (s Summary) AllSourcesFailed() bool {
	return s.Sources > 0 && s.SourcesFailed == s.Sources
}
