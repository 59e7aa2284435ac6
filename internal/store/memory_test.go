package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type companyDoc struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Category string `bson:"category"`
}

type scoreDoc struct {
	UserID       string `bson:"_id"`
	Nickname     string `bson:"nickname"`
	AllTimeScore int    `bson:"allTimeScore"`
}

func TestMemoryGetOne(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Create(ctx, "companies", "c1", companyDoc{ID: "c1", Name: "Espressolab", Category: "coffee"})
	require.NoError(t, err)

	var got companyDoc
	require.NoError(t, m.GetOne(ctx, "companies", "c1", &got))
	assert.Equal(t, "Espressolab", got.Name)

	err = m.GetOne(ctx, "companies", "missing", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCreateGeneratesKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	key, err := m.Create(ctx, "companies", "", companyDoc{Name: "D&R"})
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	var got companyDoc
	require.NoError(t, m.GetOne(ctx, "companies", key, &got))
	assert.Equal(t, "D&R", got.Name)
}

func TestMemoryCreateDuplicateKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Create(ctx, "companies", "c1", companyDoc{Name: "A"})
	require.NoError(t, err)

	_, err = m.Create(ctx, "companies", "c1", companyDoc{Name: "B"})
	var backendErr *BackendError
	assert.ErrorAs(t, err, &backendErr)
}

func TestMemoryFilters(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	seed := []companyDoc{
		{ID: "c1", Name: "Espressolab", Category: "coffee"},
		{ID: "c2", Name: "D&R", Category: "retail"},
		{ID: "c3", Name: "EspressoHouse", Category: "coffee"},
	}
	for _, c := range seed {
		_, err := m.Create(ctx, "companies", c.ID, c)
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{
			name:    "equality",
			filters: []Filter{{Field: "category", Op: OpEq, Value: "coffee"}},
			want:    []string{"c1", "c3"},
		},
		{
			name:    "inequality",
			filters: []Filter{{Field: "category", Op: OpNe, Value: "coffee"}},
			want:    []string{"c2"},
		},
		{
			name:    "prefix match",
			filters: PrefixFilters("name", "Esp"),
			want:    []string{"c1", "c3"},
		},
		{
			name:    "prefix is case-sensitive",
			filters: PrefixFilters("name", "esp"),
			want:    nil,
		},
		{
			name: "anded filters",
			filters: append(PrefixFilters("name", "Espresso"),
				Filter{Field: "category", Op: OpEq, Value: "retail"}),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []companyDoc
			_, err := m.ListMany(ctx, "companies", Query{Filters: tt.filters}, &got)
			require.NoError(t, err)

			var ids []string
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestMemorySortAndPagination(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// 25 entries with distinct descending scores: user-01 has the highest
	for i := 1; i <= 25; i++ {
		doc := scoreDoc{
			UserID:       fmt.Sprintf("user-%02d", i),
			Nickname:     fmt.Sprintf("player%d", i),
			AllTimeScore: (26 - i) * 10,
		}
		_, err := m.Create(ctx, "leaderboard", doc.UserID, doc)
		require.NoError(t, err)
	}

	sortDesc := &Sort{Field: "allTimeScore", Desc: true}

	var first []scoreDoc
	next, err := m.ListMany(ctx, "leaderboard", Query{Sort: sortDesc, Page: Page{Size: 10}}, &first)
	require.NoError(t, err)
	require.Len(t, first, 10)
	require.NotEmpty(t, next)
	assert.Equal(t, "user-01", first[0].UserID)
	assert.Equal(t, "user-10", first[9].UserID)

	var second []scoreDoc
	next, err = m.ListMany(ctx, "leaderboard", Query{Sort: sortDesc, Page: Page{Size: 10, Cursor: next}}, &second)
	require.NoError(t, err)
	require.Len(t, second, 10)
	assert.Equal(t, "user-11", second[0].UserID)
	assert.Equal(t, "user-20", second[9].UserID)

	// no overlap, no gap
	seen := map[string]bool{}
	for _, d := range append(first, second...) {
		assert.False(t, seen[d.UserID], "duplicate %s across pages", d.UserID)
		seen[d.UserID] = true
	}

	var third []scoreDoc
	next, err = m.ListMany(ctx, "leaderboard", Query{Sort: sortDesc, Page: Page{Size: 10, Cursor: next}}, &third)
	require.NoError(t, err)
	assert.Len(t, third, 5)
	assert.Empty(t, next)
}

func TestMemoryPaginationWithTiedScores(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 1; i <= 6; i++ {
		doc := scoreDoc{UserID: fmt.Sprintf("user-%02d", i), AllTimeScore: 100}
		_, err := m.Create(ctx, "leaderboard", doc.UserID, doc)
		require.NoError(t, err)
	}

	sortDesc := &Sort{Field: "allTimeScore", Desc: true}

	var all []scoreDoc
	cursor := ""
	for {
		var page []scoreDoc
		next, err := m.ListMany(ctx, "leaderboard", Query{Sort: sortDesc, Page: Page{Size: 2, Cursor: cursor}}, &page)
		require.NoError(t, err)
		all = append(all, page...)
		if next == "" {
			break
		}
		cursor = next
	}
	assert.Len(t, all, 6)
}

func TestMemoryMalformedCursor(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var got []companyDoc
	_, err := m.ListMany(ctx, "companies", Query{Page: Page{Size: 5, Cursor: "not-a-cursor"}}, &got)
	var queryErr *QueryError
	assert.ErrorAs(t, err, &queryErr)
}

func TestMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type settingsDoc struct {
		ID            string `bson:"_id"`
		Nickname      string `bson:"nickname"`
		Notifications struct {
			Enabled bool `bson:"enabled"`
		} `bson:"notifications"`
	}

	doc := settingsDoc{ID: "u1", Nickname: "old"}
	doc.Notifications.Enabled = true
	_, err := m.Create(ctx, "settings", "u1", doc)
	require.NoError(t, err)

	var updated settingsDoc
	err = m.Update(ctx, "settings", "u1", map[string]interface{}{
		"nickname":              "new",
		"notifications.enabled": false,
	}, &updated)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Nickname)
	assert.False(t, updated.Notifications.Enabled)

	err = m.Update(ctx, "settings", "missing", map[string]interface{}{"nickname": "x"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Create(ctx, "companies", "c1", companyDoc{Name: "A"})
	require.NoError(t, err)

	removed, err := m.Delete(ctx, "companies", "c1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.Delete(ctx, "companies", "c1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryTransactionRollback(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Create(ctx, "companies", "c1", companyDoc{Name: "A"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := m.Create(ctx, "companies", "c2", companyDoc{Name: "B"}); err != nil {
			return err
		}
		if err := m.Update(ctx, "companies", "c1", map[string]interface{}{"name": "mutated"}, nil); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var got companyDoc
	require.NoError(t, m.GetOne(ctx, "companies", "c1", &got))
	assert.Equal(t, "A", got.Name, "update inside failed transaction must be rolled back")

	err = m.GetOne(ctx, "companies", "c2", &got)
	assert.ErrorIs(t, err, ErrNotFound, "create inside failed transaction must be rolled back")
}

func TestMemoryTimestamps(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type stamped struct {
		ID        string `bson:"_id"`
		Name      string `bson:"name"`
		CreatedAt int64  `bson:"-"`
	}

	_, err := m.Create(ctx, "companies", "c1", stamped{Name: "A"})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, m.GetOne(ctx, "companies", "c1", &raw))
	assert.Contains(t, raw, "createdAt")
	assert.Contains(t, raw, "updatedAt")
}
