package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store used by tests and local development. It mirrors
// the remote implementation's semantics: same filter operators, same sort and
// cursor behavior, same error taxonomy.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]bson.M
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]bson.M)}
}

func (m *Memory) GetOne(ctx context.Context, collection, key string, dest interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.data[collection][key]
	if !ok {
		return ErrNotFound
	}
	return decodeDoc(doc, dest)
}

func (m *Memory) ListMany(ctx context.Context, collection string, q Query, dest interface{}) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []bson.M
	for _, doc := range m.data[collection] {
		ok, err := matches(doc, q.Filters)
		if err != nil {
			return "", err
		}
		if ok {
			docs = append(docs, doc)
		}
	}

	sortDocs(docs, q.Sort)

	if q.Page.Cursor != "" {
		cur, err := decodeCursor(q.Page.Cursor)
		if err != nil {
			return "", &QueryError{Reason: err.Error()}
		}
		docs = after(docs, q.Sort, cur)
	}

	next := ""
	if q.Page.Size > 0 && len(docs) > q.Page.Size {
		docs = docs[:q.Page.Size]
		next = nextCursor(docs[len(docs)-1], q.Sort)
	}

	return next, decodeDocs(docs, dest)
}

func (m *Memory) Create(ctx context.Context, collection, key string, doc interface{}) (string, error) {
	raw, err := toDoc(doc)
	if err != nil {
		return "", &BackendError{Op: "create", Err: err}
	}
	if key == "" {
		key = uuid.NewString()
	}
	raw["_id"] = key
	now := time.Now().UTC()
	raw["createdAt"] = now
	raw["updatedAt"] = now

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.data[collection]
	if coll == nil {
		coll = make(map[string]bson.M)
		m.data[collection] = coll
	}
	if _, exists := coll[key]; exists {
		return "", &BackendError{Op: "create", Err: errors.New("duplicate key: " + key)}
	}
	stored, err := clone(raw)
	if err != nil {
		return "", &BackendError{Op: "create", Err: err}
	}
	coll[key] = stored
	return key, nil
}

func (m *Memory) Update(ctx context.Context, collection, key string, partial map[string]interface{}, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.data[collection][key]
	if !ok {
		return ErrNotFound
	}
	merged, err := clone(doc)
	if err != nil {
		return &BackendError{Op: "update", Err: err}
	}
	for path, value := range partial {
		if err := setPath(merged, path, value); err != nil {
			return &BackendError{Op: "update", Err: err}
		}
	}
	merged["updatedAt"] = time.Now().UTC()
	m.data[collection][key] = merged

	if dest == nil {
		return nil
	}
	return decodeDoc(merged, dest)
}

func (m *Memory) Delete(ctx context.Context, collection, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[collection][key]; !ok {
		return false, nil
	}
	delete(m.data[collection], key)
	return true, nil
}

// WithTransaction snapshots the whole dataset and restores it when fn fails.
// Coarse, but it gives tests the same all-or-nothing registration semantics as
// the remote implementation.
func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	snapshot := make(map[string]map[string]bson.M, len(m.data))
	for name, coll := range m.data {
		copied := make(map[string]bson.M, len(coll))
		for id, doc := range coll {
			c, err := clone(doc)
			if err != nil {
				m.mu.Unlock()
				return &BackendError{Op: "transaction", Err: err}
			}
			copied[id] = c
		}
		snapshot[name] = copied
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.data = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func clone(doc bson.M) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(doc bson.M, filters []Filter) (bool, error) {
	for _, f := range filters {
		actual := getPath(doc, f.Field)
		cmp, comparable := compareValues(actual, f.Value)
		switch f.Op {
		case OpEq:
			if !comparable || cmp != 0 {
				return false, nil
			}
		case OpNe:
			if comparable && cmp == 0 {
				return false, nil
			}
		case OpLt:
			if !comparable || cmp >= 0 {
				return false, nil
			}
		case OpLte:
			if !comparable || cmp > 0 {
				return false, nil
			}
		case OpGt:
			if !comparable || cmp <= 0 {
				return false, nil
			}
		case OpGte:
			if !comparable || cmp < 0 {
				return false, nil
			}
		default:
			return false, &QueryError{Reason: "unknown operator " + string(f.Op)}
		}
	}
	return true, nil
}

func sortDocs(docs []bson.M, s *Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		if s != nil {
			cmp, ok := compareValues(getPath(docs[i], s.Field), getPath(docs[j], s.Field))
			if ok && cmp != 0 {
				if s.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		// primary key tiebreak keeps pagination deterministic
		a, _ := docs[i]["_id"].(string)
		b, _ := docs[j]["_id"].(string)
		return a < b
	})
}

// after drops every document at or before the cursor position in sorted order.
func after(docs []bson.M, s *Sort, cur cursor) []bson.M {
	for i, doc := range docs {
		id, _ := doc["_id"].(string)
		if s == nil {
			if id > cur.ID {
				return docs[i:]
			}
			continue
		}
		cmp, ok := compareValues(getPath(doc, s.Field), cur.Value)
		if !ok {
			continue
		}
		pastValue := (s.Desc && cmp < 0) || (!s.Desc && cmp > 0)
		if pastValue || (cmp == 0 && id > cur.ID) {
			return docs[i:]
		}
	}
	return nil
}

func nextCursor(last bson.M, s *Sort) string {
	id, _ := last["_id"].(string)
	c := cursor{ID: id}
	if s != nil {
		c.Field = s.Field
		c.Value = getPath(last, s.Field)
	}
	return encodeCursor(c)
}

func getPath(doc bson.M, path string) interface{} {
	parts := strings.Split(path, ".")
	var current interface{} = doc
	for _, part := range parts {
		m, ok := current.(bson.M)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

func setPath(doc bson.M, path string, value interface{}) error {
	parts := strings.Split(path, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(bson.M)
		if !ok {
			if current[part] != nil {
				return errors.New("cannot set " + path + ": " + part + " is not a document")
			}
			next = bson.M{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// compareValues orders two values the way the remote store does, normalizing
// across the numeric types bson and JSON cursors produce. The second return
// reports whether the values were comparable at all.
func compareValues(a, b interface{}) (int, bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}

	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	case primitive.DateTime:
		switch bv := b.(type) {
		case primitive.DateTime:
			switch {
			case av < bv:
				return -1, true
			case av > bv:
				return 1, true
			default:
				return 0, true
			}
		case time.Time:
			return compareValues(av.Time().UTC(), bv)
		}
		return 0, false
	case time.Time:
		switch bv := b.(type) {
		case time.Time:
			switch {
			case av.Before(bv):
				return -1, true
			case av.After(bv):
				return 1, true
			default:
				return 0, true
			}
		case primitive.DateTime:
			return compareValues(av, bv.Time().UTC())
		}
		return 0, false
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return float64(n), true
	default:
		return 0, false
	}
}
