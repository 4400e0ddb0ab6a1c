package tagging

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jdkato/prose/v2"
)

// Entity categories that may confirm a keyword.
const (
	CategoryOrganization = "ORG"
	CategoryProduct      = "PRODUCT"
)

// proseCategories maps prose model labels onto entity categories. The model
// only knows PERSON, GPE and ORGANIZATION, so it never yields CategoryProduct.
var proseCategories = map[string]string{
	"ORGANIZATION": CategoryOrganization,
}

// Entity is a named entity found in free text.
type Entity struct {
	Text     string
	Category string
}

// EntityRecognizer finds named entities in text.
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, text string) ([]Entity, error)
}

// NopRecognizer finds nothing. Tagging then relies on keyword matches alone.
type NopRecognizer struct{}

func (NopRecognizer) RecognizeEntities(context.Context, string) ([]Entity, error) {
	return nil, nil
}

// proseModel loads the bundled tagger and entity model once. Inference only
// reads the model, so it is shared across goroutines.
var proseModel = sync.OnceValues(func() (*prose.Model, error) {
	doc, err := prose.NewDocument("", prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	return doc.Model, nil
})

// ProseRecognizer runs the prose named-entity model. Segmentation is disabled
// since README text is tagged as a single document. ORGANIZATION entities are
// reported as CategoryOrganization; other labels pass through unchanged. The
// model has no product label.
type ProseRecognizer struct{}

func (ProseRecognizer) RecognizeEntities(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model, err := proseModel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load entity model")
	}
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false), prose.UsingModel(model))
	if err != nil {
		return nil, errors.Wrap(err, "failed to run entity recognition")
	}
	ents := doc.Entities()
	out := make([]Entity, 0, len(ents))
	for _, ent := range ents {
		category, ok := proseCategories[ent.Label]
		if !ok {
			category = ent.Label
		}
		out = append(out, Entity{Text: ent.Text, Category: category})
	}
	return out, nil
}

// NewRecognizer returns the recognizer registered under name ("prose" or "none").
func NewRecognizer(name string) (EntityRecognizer, error) {
	switch name {
	case "prose", "":
		return ProseRecognizer{}, nil
	case "none":
		return NopRecognizer{}, nil
	}
	return nil, errors.Newf("unknown entity recognizer %q (want prose or none)", name)
}
