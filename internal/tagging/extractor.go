// Package tagging derives technology tags from README text.
//
// Tags always come from a fixed keyword table. A keyword becomes a tag when it
// occurs anywhere in the case-folded README, without word-boundary checks, so
// short keywords such as "go" or "rest" also match inside longer words. Named
// entities tagged as organisations or products are folded and added only when
// they are themselves keywords; recognition never widens the vocabulary.
package tagging

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// MaxTags caps the number of tags returned per README.
const MaxTags = 15

// Extractor matches README text against the keyword table.
type Extractor struct {
	recognizer EntityRecognizer
	logger     *log.Logger
}

// NewExtractor creates a new Extractor. A nil recognizer disables the entity pass.
func NewExtractor(recognizer EntityRecognizer, logger *log.Logger) *Extractor {
	if recognizer == nil {
		recognizer = NopRecognizer{}
	}
	return &Extractor{recognizer: recognizer, logger: logger}
}

// Extract returns up to MaxTags distinct keywords found in readme, sorted ascending.
// An absent README (ok == false) yields an empty slice.
func (e *Extractor) Extract(ctx context.Context, readme string, ok bool) []string {
	if !ok {
		return []string{}
	}

	folded := strings.ToLower(readme)
	tags := make(map[string]struct{})
	for _, keyword := range keywordTable {
		if strings.Contains(folded, keyword) {
			tags[keyword] = struct{}{}
		}
	}

	entities, err := e.recognizer.RecognizeEntities(ctx, readme)
	if err != nil {
		e.logger.Warn("Entity recognition failed; using keyword matches only.", "err", err)
	}
	for _, ent := range entities {
		if ent.Category != CategoryOrganization && ent.Category != CategoryProduct {
			continue
		}
		if name := strings.ToLower(strings.TrimSpace(ent.Text)); IsKeyword(name) {
			tags[name] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(tags))
	for tag := range tags {
		sorted = append(sorted, tag)
	}
	sort.Strings(sorted)
	if len(sorted) > MaxTags {
		sorted = sorted[:MaxTags]
	}
	e.logger.Debug("Extracted README tags.", "tags", len(sorted), "entities", len(entities))
	return sorted
}
