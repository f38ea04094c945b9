package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for post documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on message bodies with English stemming
//  2. Exact keyword matching for topic and tag filters
//  3. Numeric fields for sorting by score, reply count, and recency
//  4. Term vectors on the message field for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Message - primary search target
	messageFieldMapping := bleve.NewTextFieldMapping()
	messageFieldMapping.Analyzer = en.AnalyzerName
	messageFieldMapping.Store = true
	messageFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("message", messageFieldMapping)

	// Alias - searchable with simple analyzer (no stemming on display names)
	aliasFieldMapping := bleve.NewTextFieldMapping()
	aliasFieldMapping.Analyzer = simple.Name
	aliasFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("alias", aliasFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Topic - for filtering by board topic
	topicFieldMapping := bleve.NewTextFieldMapping()
	topicFieldMapping.Analyzer = keyword.Name
	topicFieldMapping.Store = true
	topicFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("topic", topicFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Extra tags - keyword analyzer keeps compound tags intact (e.g., "#LateNight")
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("extra_tags", tagsFieldMapping)

	// --- Numeric fields (sorting) ---

	scoreFieldMapping := bleve.NewNumericFieldMapping()
	scoreFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("score", scoreFieldMapping)

	replyCountFieldMapping := bleve.NewNumericFieldMapping()
	replyCountFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("reply_count", replyCountFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
