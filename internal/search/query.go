package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string // User's search query

	// Filters
	Topic     string   // Filter by exact topic tag (e.g. "#Crush")
	ExtraTags []string // Filter by exact extra tags (OR across tags)

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy string // "relevance", "recent", "score"

	// Options
	IncludeFacets bool // Include topic/tag facet counts in results
	Highlight     bool // Include match highlighting on the message field
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets,omitempty"`
}

// Hit represents a single search result.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Message    string            `json:"message"`
	Alias      string            `json:"alias"`
	Topic      string            `json:"topic"`
	PostScore  int               `json:"post_score"`
	ReplyCount int               `json:"reply_count"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Facets contains facet counts.
type Facets struct {
	Topics []FacetCount `json:"topics,omitempty"`
	Tags   []FacetCount `json:"tags,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("topic", bleve.NewFacetRequest("topic", 20))
		searchRequest.AddFacet("extra_tags", bleve.NewFacetRequest("extra_tags", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("message")
	}

	searchRequest.Fields = []string{
		"id", "message", "alias", "topic", "score", "reply_count",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if m, ok := hit.Fields["message"].(string); ok {
			searchHit.Message = m
		}
		if a, ok := hit.Fields["alias"].(string); ok {
			searchHit.Alias = a
		}
		if topic, ok := hit.Fields["topic"].(string); ok {
			searchHit.Topic = topic
		}
		if sc, ok := hit.Fields["score"].(float64); ok {
			searchHit.PostScore = int(sc)
		}
		if rc, ok := hit.Fields["reply_count"].(float64); ok {
			searchHit.ReplyCount = int(rc)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Message match with highest boost.
		messageMatch := bleve.NewMatchQuery(params.Query)
		messageMatch.SetField("message")
		messageMatch.SetBoost(3.0)
		textQueries = append(textQueries, messageMatch)

		// Alias match so searches for a pseudonym surface its posts.
		aliasMatch := bleve.NewMatchQuery(params.Query)
		aliasMatch.SetField("alias")
		aliasMatch.SetBoost(1.5)
		textQueries = append(textQueries, aliasMatch)

		// Fuzzy matching for typo tolerance on the message body.
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("message")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars).
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("message")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Topic filter (exact match)
	if params.Topic != "" {
		tq := bleve.NewTermQuery(params.Topic)
		tq.SetField("topic")
		queries = append(queries, tq)
	}

	// Extra tag filter (exact match, OR across tags)
	if len(params.ExtraTags) > 0 {
		tagQueries := make([]query.Query, len(params.ExtraTags))
		for i, tag := range params.ExtraTags {
			gq := bleve.NewTermQuery(tag)
			gq.SetField("extra_tags")
			tagQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "recent":
		req.SortBy([]string{"-created_at"})
	case "score":
		req.SortBy([]string{"-score", "-created_at"})
	default:
		// Relevance is the default.
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) Facets {
	facets := Facets{}

	if topicFacet, ok := result.Facets["topic"]; ok {
		for _, term := range topicFacet.Terms.Terms() {
			facets.Topics = append(facets.Topics, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if tagFacet, ok := result.Facets["extra_tags"]; ok {
		for _, term := range tagFacet.Terms.Terms() {
			facets.Tags = append(facets.Tags, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
