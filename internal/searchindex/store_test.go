package searchindex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/rentals/internal/paging"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "index.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedDocuments(t *testing.T, s *Store) {
	t.Helper()
	docs := []Document{
		{ID: 1, Title: "Sunny loft", City: "Berlin", PricePerNight: 9000, Bedrooms: 1, MaxGuests: 2,
			Status: "listed", Amenities: []string{"wifi", "kitchen"}, Categories: []string{"Apartment"}},
		{ID: 2, Title: "Lake cabin", Description: "Quiet place with a sea view", City: "Oslo", PricePerNight: 12000,
			Bedrooms: 3, MaxGuests: 6, Status: "listed", OwnerName: "Ingrid", Amenities: []string{"parking"}, Categories: []string{"Cabin"}},
		{ID: 3, Title: "Villa 100%", City: "Nice", PricePerNight: 40000, Bedrooms: 5, MaxGuests: 10,
			Status: "draft", Amenities: []string{"pool", "wifi"}},
	}
	for _, d := range docs {
		require.NoError(t, s.Upsert(context.Background(), d))
	}
}

func search(t *testing.T, s *Store, query string, page paging.Request) ([]uint, int64) {
	t.Helper()
	q, err := ParseQuery(query)
	require.NoError(t, err)
	docs, total, err := s.Query(context.Background(), q, page)
	require.NoError(t, err)
	ids := []uint{}
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, total
}

func TestStore_Query(t *testing.T) {
	s := setupTestStore(t)
	seedDocuments(t, s)

	tests := []struct {
		query string
		want  []uint
	}{
		{"*", []uint{1, 2, 3}},
		{"LOFT", []uint{1}},
		{`"sea view"`, []uint{2}},
		{"ingrid", []uint{2}},
		{"city:oslo", []uint{2}},
		{"amenity:wifi", []uint{1, 3}},
		{"-amenity:wifi", []uint{2}},
		{"category:cabin", []uint{2}},
		{"status:listed price:<10000", []uint{1}},
		{"bedrooms:[2 TO 5]", []uint{2, 3}},
		{"guests:>=6", []uint{2, 3}},
		{"100%", []uint{3}},
		{"amenity:wi", []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ids, total := search(t, s, tt.query, paging.Request{})
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestStore_QueryPaging(t *testing.T) {
	s := setupTestStore(t)
	seedDocuments(t, s)

	ids, total := search(t, s, "*", paging.Request{
		Limit: 2,
		Sort:  []paging.Order{{Field: "price", Desc: true}},
	})
	assert.Equal(t, []uint{3, 2}, ids)
	assert.Equal(t, int64(3), total, "total is independent of page size")

	ids, total = search(t, s, "*", paging.Request{Offset: 2, Limit: 2, Sort: []paging.Order{{Field: "price", Desc: true}}})
	assert.Equal(t, []uint{1}, ids)
	assert.Equal(t, int64(3), total)
}

func TestStore_UpsertReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, Document{ID: 5, Title: "Old title", Amenities: []string{"wifi"}}))
	require.NoError(t, s.Upsert(ctx, Document{ID: 5, Title: "New title"}))

	doc, err := s.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "New title", doc.Title)
	assert.Empty(t, doc.Amenities)

	ids, _ := search(t, s, "old", paging.Request{})
	assert.Empty(t, ids)
}

func TestStore_Delete(t *testing.T) {
	s := setupTestStore(t)
	seedDocuments(t, s)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, 2))
	require.NoError(t, s.Delete(ctx, 2), "deleting twice is fine")

	_, err := s.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	ids, err := s.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, ids)
}

func TestStore_UpsertRequiresID(t *testing.T) {
	s := setupTestStore(t)
	assert.Error(t, s.Upsert(context.Background(), Document{Title: "no id"}))
}
