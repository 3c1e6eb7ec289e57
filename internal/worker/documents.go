package worker

import (
	"sort"
	"sync"
)

// Model is a document mirrored from the editor
type Model interface {
	URI() string
	Version() int32
	Value() string
}

// MirrorContext enumerates the mirrored documents
type MirrorContext interface {
	Models() []Model
}

type model struct {
	uri        string
	languageID string
	version    int32
	value      string
}

func (m *model) URI() string    { return m.uri }
func (m *model) Version() int32 { return m.version }
func (m *model) Value() string  { return m.value }

// Documents is a MirrorContext editors write to. It is safe for concurrent
// use; models handed out are immutable snapshots.
type Documents struct {
	mu     sync.RWMutex
	models map[string]*model
}

// NewDocuments creates an empty document store
func NewDocuments() *Documents {
	return &Documents{models: make(map[string]*model)}
}

// Open adds or replaces a document
func (d *Documents) Open(uri, languageID string, version int32, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.models[uri] = &model{uri: uri, languageID: languageID, version: version, value: text}
}

// Update replaces the text of an open document. It returns false for
// unknown documents and for versions older than the stored one.
func (d *Documents) Update(uri string, version int32, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.models[uri]
	if !ok || version < m.version {
		return false
	}
	d.models[uri] = &model{uri: uri, languageID: m.languageID, version: version, value: text}
	return true
}

// Close forgets a document
func (d *Documents) Close(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.models, uri)
}

// LanguageID returns the language of an open document, or ""
func (d *Documents) LanguageID(uri string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if m, ok := d.models[uri]; ok {
		return m.languageID
	}
	return ""
}

// Models returns the open documents sorted by URI
func (d *Documents) Models() []Model {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Model, 0, len(d.models))
	for _, m := range d.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].URI() < out[j].URI()
	})
	return out
}
