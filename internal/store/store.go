package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// Collection names. The remote store is schemaless, so these names together with
// the field names on the model structs are the actual wire contract.
const (
	CollUserCredentials      = "userCredentials"
	CollUserProfiles         = "userProfiles"
	CollUserSettings         = "userSettings"
	CollLeaderboard          = "leaderboard"
	CollBoycottCompanies     = "boycottCompanies"
	CollAnnouncements        = "announcements"
	CollChannels             = "channels"
	CollChannelSubscriptions = "channelSubscriptions"
)

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Filter is a single (field, operator, value) condition. Filters in a query are
// ANDed together; there is no OR and no full-text search.
type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

// Sort orders results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Page requests a bounded slice of results. Cursor is the opaque token returned
// by the previous call, empty for the first page.
type Page struct {
	Size   int
	Cursor string
}

// Query bundles filters, at most one sort field, and pagination.
type Query struct {
	Filters []Filter
	Sort    *Sort
	Page    Page
}

// Store is a uniform vocabulary over named remote collections, hiding the
// database driver's query-building API from callers. Implementations never
// retry; callers receive a typed error and decide what to do next.
type Store interface {
	// GetOne fetches a single record by primary key into dest.
	// Returns ErrNotFound when the key does not exist.
	GetOne(ctx context.Context, collection, key string, dest interface{}) error

	// ListMany fetches records matching the query into dest (a pointer to a
	// slice) and returns the cursor for the next page, empty when the result
	// set is exhausted.
	ListMany(ctx context.Context, collection string, q Query, dest interface{}) (string, error)

	// Create writes a new record, stamping createdAt/updatedAt. An empty key
	// asks the store to generate one. Returns the key actually used.
	Create(ctx context.Context, collection, key string, doc interface{}) (string, error)

	// Update merges partial data into the existing record, stamps updatedAt and
	// decodes the merged record into dest when dest is non-nil. Returns
	// ErrNotFound if the key does not exist. Nested fields use dotted paths.
	Update(ctx context.Context, collection, key string, partial map[string]interface{}, dest interface{}) error

	// Delete removes the record and reports whether one was actually removed.
	Delete(ctx context.Context, collection, key string) (bool, error)

	// WithTransaction runs fn atomically. Every store call inside fn must use
	// the context passed to fn.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// prefixUpperBound terminates the range-filter emulation of prefix search.
// It is the highest code point in the private-use area, so every string with
// the given prefix sorts below prefix+prefixUpperBound.
const prefixUpperBound = "\uf8ff"

// PrefixFilters emulates a prefix search on field with a pair of range filters.
// Only case-sensitive prefixes match; this is a known limitation of the
// underlying query model, not a bug.
func PrefixFilters(field, prefix string) []Filter {
	return []Filter{
		{Field: field, Op: OpGte, Value: prefix},
		{Field: field, Op: OpLte, Value: prefix + prefixUpperBound},
	}
}

// cursor is the decoded form of the opaque pagination token: the sort-field
// value and primary key of the previous page's last record.
type cursor struct {
	Field string
	Value interface{}
	ID    string
}

// Cursors round-trip through canonical extended JSON so sort-field values keep
// their bson types; a date encoded as a plain number would never match again.
func encodeCursor(c cursor) string {
	doc := bson.M{"id": c.ID}
	if c.Field != "" {
		doc["f"] = c.Field
		doc["v"] = c.Value
	}
	raw, err := bson.MarshalExtJSON(doc, true, false)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(token string) (cursor, error) {
	var c cursor
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, fmt.Errorf("malformed cursor: %w", err)
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(raw, true, &doc); err != nil {
		return c, fmt.Errorf("malformed cursor: %w", err)
	}
	c.ID, _ = doc["id"].(string)
	c.Field, _ = doc["f"].(string)
	c.Value = doc["v"]
	if c.ID == "" {
		return c, fmt.Errorf("malformed cursor: missing id")
	}
	return c, nil
}

// toDoc converts an arbitrary struct or map into a bson document.
func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// decodeDoc copies a bson document into a caller-provided struct.
func decodeDoc(doc bson.M, dest interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, dest)
}

// decodeDocs copies bson documents into dest, which must be a pointer to a
// slice. Mirrors what the driver's cursor.All does for the remote path.
func decodeDocs(docs []bson.M, dest interface{}) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice, got %T", dest)
	}
	slice := rv.Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(docs)))
	elemType := slice.Type().Elem()
	for _, doc := range docs {
		elem := reflect.New(elemType)
		if err := decodeDoc(doc, elem.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}
