package index

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ali01/graphd/internal/core/errkit"
	"github.com/ali01/graphd/internal/core/value"
)

// FulltextConfig mirrors the source's FulltextIndexConfig.
type FulltextConfig struct {
	Name          string
	SchemaType    Kind // KindTag or KindEdge
	SchemaName    string
	Fields        []string
	Analyzer      string
	CaseSensitive bool
	CreatedAt     time.Time
}

// Document mirrors the source's FulltextDocument: an indexable record
// keyed by id, carrying the subset of properties named in its index's
// Fields.
type Document struct {
	ID         string
	SchemaName string
	Content    map[string]value.Value
	IndexedAt  time.Time
}

func NewDocument(id, schemaName string) *Document {
	return &Document{ID: id, SchemaName: schemaName, Content: make(map[string]value.Value), IndexedAt: time.Now()}
}

func (d *Document) AddField(field string, v value.Value) {
	d.Content[field] = v
}

// TextContent concatenates every string-valued field, matching the
// source's get_text_content: null fields are dropped, non-string fields
// fall back to their String() rendering.
func (d *Document) TextContent() string {
	var parts []string
	for _, v := range d.Content {
		if v.IsNull() {
			continue
		}
		if s, ok := v.AsString(); ok {
			parts = append(parts, s)
			continue
		}
		parts = append(parts, v.String())
	}
	return strings.Join(parts, " ")
}

// SearchResult mirrors the source's FulltextSearchResult.
type SearchResult struct {
	ID    string
	Score float32
}

// Query mirrors the source's FulltextQuery.
type Query struct {
	IndexName   string
	QueryString string
	Fields      []string
	Limit       int
	Offset      int
}

func NewQuery(indexName, queryString string) Query {
	return Query{IndexName: indexName, QueryString: queryString, Limit: 100}
}

// FulltextEngine is the pluggable search backend, mirroring the source's
// FulltextIndexEngine trait.
type FulltextEngine interface {
	CreateIndex(cfg FulltextConfig) error
	DropIndex(name string) error
	IndexDocument(doc Document) error
	DeleteDocument(id string) error
	Search(q Query) ([]SearchResult, error)
	IndexExists(name string) bool
	GetIndexConfig(name string) (FulltextConfig, bool)
	ListIndexConfigs() []FulltextConfig
}

// SimpleFulltextEngine is the in-memory reference implementation required
// by the contract. Grounded on original_source/.../index/fulltext.rs's
// SimpleFulltextEngine: lowercase-and-split-on-non-alphanumeric tokenizer,
// an inverted index of token -> "indexName:docID" postings, and a
// term-frequency score (one point per matching token occurrence).
type SimpleFulltextEngine struct {
	mu            sync.Mutex
	configs       map[string]FulltextConfig
	documents     map[string]map[string]Document // indexName -> docID -> Document
	invertedIndex map[string]map[string]struct{} // token -> set of "indexName:docID"
}

func NewSimpleFulltextEngine() *SimpleFulltextEngine {
	return &SimpleFulltextEngine{
		configs:       make(map[string]FulltextConfig),
		documents:     make(map[string]map[string]Document),
		invertedIndex: make(map[string]map[string]struct{}),
	}
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	return fields
}

func postingKey(indexName, docID string) string { return indexName + ":" + docID }

func (e *SimpleFulltextEngine) CreateIndex(cfg FulltextConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.configs[cfg.Name]; exists {
		return errkit.NewManagerError(errkit.ManagerAlreadyExists, "fulltext index already exists: "+cfg.Name)
	}
	e.configs[cfg.Name] = cfg
	e.documents[cfg.Name] = make(map[string]Document)
	return nil
}

func (e *SimpleFulltextEngine) DropIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.configs[name]; !exists {
		return errkit.NewManagerError(errkit.ManagerNotFound, "fulltext index not found: "+name)
	}
	delete(e.configs, name)
	delete(e.documents, name)
	prefix := name + ":"
	for token, postings := range e.invertedIndex {
		for key := range postings {
			if strings.HasPrefix(key, prefix) {
				delete(postings, key)
			}
		}
		if len(postings) == 0 {
			delete(e.invertedIndex, token)
		}
	}
	return nil
}

func (e *SimpleFulltextEngine) IndexDocument(doc Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	indexName := doc.SchemaName
	if _, exists := e.configs[indexName]; !exists {
		return errkit.NewManagerError(errkit.ManagerNotFound, "fulltext index not found: "+indexName)
	}
	e.documents[indexName][doc.ID] = doc
	key := postingKey(indexName, doc.ID)
	for _, token := range tokenize(doc.TextContent()) {
		postings, ok := e.invertedIndex[token]
		if !ok {
			postings = make(map[string]struct{})
			e.invertedIndex[token] = postings
		}
		postings[key] = struct{}{}
	}
	return nil
}

func (e *SimpleFulltextEngine) DeleteDocument(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for indexName, docs := range e.documents {
		if _, ok := docs[id]; !ok {
			continue
		}
		delete(docs, id)
		key := postingKey(indexName, id)
		for token, postings := range e.invertedIndex {
			delete(postings, key)
			if len(postings) == 0 {
				delete(e.invertedIndex, token)
			}
		}
		return nil
	}
	return nil
}

func (e *SimpleFulltextEngine) Search(q Query) ([]SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.configs[q.IndexName]; !exists {
		return nil, errkit.NewManagerError(errkit.ManagerNotFound, "fulltext index not found: "+q.IndexName)
	}
	scores := make(map[string]float32)
	prefix := q.IndexName + ":"
	docs := e.documents[q.IndexName]
	for _, token := range tokenize(q.QueryString) {
		for key := range e.invertedIndex[token] {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			docID := strings.TrimPrefix(key, prefix)
			doc, ok := docs[docID]
			if !ok {
				continue
			}
			for _, t := range tokenize(doc.TextContent()) {
				if t == token {
					scores[docID]++
				}
			}
		}
	}

	results := make([]SearchResult, 0, len(scores))
	for id, score := range scores {
		if _, ok := docs[id]; !ok {
			continue
		}
		results = append(results, SearchResult{ID: id, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset > len(results) {
		offset = len(results)
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end], nil
}

func (e *SimpleFulltextEngine) IndexExists(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.configs[name]
	return ok
}

func (e *SimpleFulltextEngine) GetIndexConfig(name string) (FulltextConfig, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg, ok := e.configs[name]
	return cfg, ok
}

func (e *SimpleFulltextEngine) ListIndexConfigs() []FulltextConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]FulltextConfig, 0, len(e.configs))
	for _, cfg := range e.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FulltextManager is the thin pluggable-engine wrapper the query executor
// depends on, mirroring the source's FulltextIndexManager (there, a mutex
// around a trait object; here, the engine itself owns its locking so this
// layer adds nothing but the seam an alternative engine would plug into).
type FulltextManager struct {
	engine FulltextEngine
}

func NewFulltextManager(engine FulltextEngine) *FulltextManager {
	if engine == nil {
		engine = NewSimpleFulltextEngine()
	}
	return &FulltextManager{engine: engine}
}

func (m *FulltextManager) CreateIndex(cfg FulltextConfig) error  { return m.engine.CreateIndex(cfg) }
func (m *FulltextManager) DropIndex(name string) error           { return m.engine.DropIndex(name) }
func (m *FulltextManager) IndexDocument(doc Document) error      { return m.engine.IndexDocument(doc) }
func (m *FulltextManager) DeleteDocument(id string) error        { return m.engine.DeleteDocument(id) }
func (m *FulltextManager) Search(q Query) ([]SearchResult, error) { return m.engine.Search(q) }
func (m *FulltextManager) IndexExists(name string) bool          { return m.engine.IndexExists(name) }
func (m *FulltextManager) ListIndexConfigs() []FulltextConfig    { return m.engine.ListIndexConfigs() }
