// Package searchindex is the search-side mirror of the relational store.
//
// Each property is kept as one denormalized Document keyed by the property id.
// The index lives in its own SQLite database and is written only by the
// index sync coordinator; it may lag behind the relational store.
package searchindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/rentals/internal/paging"
)

// ErrDocumentNotFound is returned by Get for ids that are not indexed.
var ErrDocumentNotFound = errors.New("document not found")

// Document is the denormalized projection of a property.
type Document struct {
	ID            uint     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title         string   `gorm:"size:256" json:"title"`
	Description   string   `gorm:"type:text" json:"description,omitempty"`
	City          string   `gorm:"index;size:128" json:"city"`
	OwnerID       uint     `gorm:"index" json:"owner_id,omitempty"`
	OwnerName     string   `gorm:"size:200" json:"owner_name,omitempty"`
	PricePerNight int      `gorm:"index" json:"price_per_night"`
	Bedrooms      int      `json:"bedrooms"`
	MaxGuests     int      `json:"max_guests"`
	Status        string   `gorm:"size:20" json:"status"`
	Amenities     []string `gorm:"serializer:json;type:text" json:"amenities"`
	Categories    []string `gorm:"serializer:json;type:text" json:"categories"`

	Content   string    `gorm:"type:text" json:"-"`
	IndexedAt time.Time `json:"indexed_at"`
}

func (Document) TableName() string {
	return "property_documents"
}

var sortColumns = map[string]string{
	"id":       "id",
	"title":    "title",
	"city":     "city",
	"price":    "price_per_night",
	"bedrooms": "bedrooms",
	"guests":   "max_guests",
	"indexed":  "indexed_at",
}

// Store is a SearchIndex backed by gorm.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the index database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_journal=WAL&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	s, err := NewStore(db)
	if err != nil {
		return nil, err
	}
	log.Printf("Search index initialized at %s", path)
	return s, nil
}

// NewStore wraps an existing connection and migrates the document table.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate search index: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the index is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Upsert inserts or replaces the document with doc.ID.
func (s *Store) Upsert(ctx context.Context, doc Document) error {
	if doc.ID == 0 {
		return fmt.Errorf("cannot index document without id")
	}
	if doc.Amenities == nil {
		doc.Amenities = []string{}
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	doc.Content = buildContent(doc)
	doc.IndexedAt = time.Now().UTC()

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&doc).Error
}

// Delete removes the document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&Document{}, id).Error
}

// Get returns a single document.
func (s *Store) Get(ctx context.Context, id uint) (*Document, error) {
	var doc Document
	err := s.db.WithContext(ctx).First(&doc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// IDs returns every indexed id in ascending order.
func (s *Store) IDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&Document{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Document{}).Count(&n).Error
	return n, err
}

// Query returns one page of matching documents and the total match count.
// Both are read in one transaction.
func (s *Store) Query(ctx context.Context, q *Query, page paging.Request) ([]Document, int64, error) {
	page = page.Normalize()
	var (
		docs  []Document
		total int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Document{}).Scopes(filter(q)).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(filter(q)).
			Order(page.Clause(sortColumns, "id")).
			Offset(page.Offset).
			Limit(page.Limit).
			Find(&docs).Error
	})
	if err != nil {
		return nil, 0, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, total, nil
}

func filter(q *Query) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if q == nil {
			return tx
		}
		for _, c := range q.Clauses {
			expr, args := clauseSQL(c)
			if c.Negate {
				expr = "NOT (" + expr + ")"
			}
			tx = tx.Where(expr, args...)
		}
		return tx
	}
}

func clauseSQL(c Clause) (string, []any) {
	if c.Field == "" {
		return `content LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(strings.ToLower(c.Value)) + "%"}
	}

	def := fields[c.Field]
	switch def.kind {
	case numericField:
		switch c.Op {
		case OpLt:
			return def.column + " < ?", []any{c.Low}
		case OpLte:
			return def.column + " <= ?", []any{c.Low}
		case OpGt:
			return def.column + " > ?", []any{c.Low}
		case OpGte:
			return def.column + " >= ?", []any{c.Low}
		case OpRange:
			return def.column + " BETWEEN ? AND ?", []any{c.Low, c.High}
		default:
			return def.column + " = ?", []any{c.Low}
		}
	case listField:
		// Lists are stored as JSON arrays; match a whole element.
		needle, _ := jsonString(strings.ToLower(c.Value))
		return "LOWER(" + def.column + `) LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(needle) + "%"}
	case exactField:
		return "LOWER(" + def.column + ") = ?", []any{strings.ToLower(c.Value)}
	default:
		return "LOWER(" + def.column + `) LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(strings.ToLower(c.Value)) + "%"}
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func buildContent(doc Document) string {
	parts := []string{doc.Title, doc.Description, doc.City, doc.OwnerName, doc.Status}
	parts = append(parts, doc.Amenities...)
	parts = append(parts, doc.Categories...)
	return strings.ToLower(strings.Join(parts, " "))
}

func jsonString(s string) (string, error) {
	b, err := json.Marshal(s)
	return string(b), err
}
