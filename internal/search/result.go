// Package search queries a MediaWiki opensearch endpoint and delivers the
// outcome of each request off the caller's goroutine. Only the outcome of
// the most recent request is ever delivered.
package search

import (
	"encoding/json"

	"github.com/justyntemme/glance/internal/errors"
)

// NoDescription fills in for a title the API returned no description for.
const NoDescription = "No description"

// Result is one article returned by a search.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Outcome is the terminal event of one search request: either Results
// (possibly empty) or Err.
type Outcome struct {
	Seq     uint64
	Query   string
	Results []Result
	Err     error
}

// OK reports whether the search succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

var errInvalidFormat = errors.New(errors.DecodeFailure, "invalid response format")

// ParseResponse decodes an opensearch body shaped
// [query, titles, descriptions, urls]. The titles array decides how many
// results there are; shorter description and url arrays are padded.
func ParseResponse(body []byte) ([]Result, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, errInvalidFormat
	}
	if len(parts) < 4 {
		return nil, errInvalidFormat
	}

	var titles, descriptions, urls []string
	for i, dst := range []*[]string{&titles, &descriptions, &urls} {
		if err := json.Unmarshal(parts[i+1], dst); err != nil {
			return nil, errInvalidFormat
		}
	}

	results := make([]Result, len(titles))
	for i, title := range titles {
		results[i] = Result{Title: title, Description: NoDescription}
		if i < len(descriptions) {
			results[i].Description = descriptions[i]
		}
		if i < len(urls) {
			results[i].URL = urls[i]
		}
	}
	return results, nil
}
