package rules

import "fmt"

// Document is a named edition, e.g. one file or one download
type Document struct {
	Name    string  `json:"name" yaml:"name"`
	Edition Edition `json:"edition" yaml:"edition"`
}

// Corpus is an ordered collection of documents
type Corpus struct {
	Documents []Document `json:"documents" yaml:"documents"`
}

// Add appends a document to the corpus
func (c *Corpus) Add(name string, edition Edition) {
	c.Documents = append(c.Documents, Document{Name: name, Edition: edition})
}

// Document returns the first document with the given name. Add does not
// enforce unique names; callers loading many documents keep them distinct.
func (c *Corpus) Document(name string) (*Document, bool) {
	for i := range c.Documents {
		if c.Documents[i].Name == name {
			return &c.Documents[i], true
		}
	}
	return nil, false
}

// Lookup finds a rule by id inside the named document
func (c *Corpus) Lookup(docName, id string) (*Rule, bool) {
	doc, ok := c.Document(docName)
	if !ok {
		return nil, false
	}
	return doc.Edition.Lookup(id)
}

// Find is Lookup for callers that want an error describing the miss
func (c *Corpus) Find(docName, id string) (*Rule, error) {
	if _, ok := c.Document(docName); !ok {
		return nil, fmt.Errorf("document %q: %w", docName, ErrNotFound)
	}
	r, ok := c.Lookup(docName, id)
	if !ok {
		return nil, fmt.Errorf("rule %s in %q: %w", id, docName, ErrNotFound)
	}
	return r, nil
}
