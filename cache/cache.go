// Package cache persists finished translations in a local SQLite database so
// repeated documents and repeated segments never hit the backend twice.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"doctrans/internal/constants"
)

var log = logrus.New()

// Entry represents the schema of the translation_cache table. The composite
// unique index makes (source_lang, target_lang, source_text) the cache key.
type Entry struct {
	ID             uint      `gorm:"primaryKey"`
	SourceLang     string    `gorm:"size:16;not null;uniqueIndex:idx_cache_key"`
	TargetLang     string    `gorm:"size:16;not null;uniqueIndex:idx_cache_key"`
	SourceText     string    `gorm:"size:1048576;not null;uniqueIndex:idx_cache_key"`
	TranslatedText string    `gorm:"size:1048576;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	LastUsedAt     time.Time `gorm:"index"`
}

func (Entry) TableName() string { return "translation_cache" }

// Stats is a snapshot of cache occupancy.
type Stats struct {
	Entries      int64     `json:"entries"`
	StorageBytes int64     `json:"storage_bytes"`
	MaxEntries   int       `json:"max_entries"`
	OldestUsed   time.Time `json:"oldest_used,omitempty"`
	NewestUsed   time.Time `json:"newest_used,omitempty"`
}

// TranslationCache is a size-bounded persistent store keyed by language pair
// and source text. Every operation degrades to a no-op on storage failure:
// a broken cache must never fail a translation, the worst case is a re-query.
type TranslationCache struct {
	db            *gorm.DB
	dbPath        string
	maxEntries    int
	evictionBatch int

	// evictMu serializes eviction passes; concurrent writers otherwise race
	// to delete the same rows.
	evictMu sync.Mutex
}

// Option configures a TranslationCache.
type Option func(*TranslationCache)

// WithMaxEntries overrides the entry ceiling. Zero or negative disables
// eviction entirely.
func WithMaxEntries(n int) Option {
	return func(c *TranslationCache) { c.maxEntries = n }
}

// WithEvictionBatch overrides how many entries one eviction pass removes.
func WithEvictionBatch(n int) Option {
	return func(c *TranslationCache) {
		if n > 0 {
			c.evictionBatch = n
		}
	}
}

// New opens (or creates) the cache database at path and migrates the schema.
func New(path string, opts ...Option) (*TranslationCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	// WAL lets the HTTP stats endpoint read while a translation run writes.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}

	c := &TranslationCache{
		db:            db,
		dbPath:        path,
		maxEntries:    constants.CacheMaxEntries,
		evictionBatch: constants.CacheEvictionBatch,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the cached translation for one source text, touching its
// last-used timestamp. A storage error is reported as a miss.
func (c *TranslationCache) Get(sourceLang, targetLang, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	var entry Entry
	err := c.db.Where("source_lang = ? AND target_lang = ? AND source_text = ?",
		sourceLang, targetLang, text).First(&entry).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Warnf("cache lookup failed: %v", err)
		}
		return "", false
	}

	if err := c.db.Model(&Entry{}).Where("id = ?", entry.ID).
		Update("last_used_at", time.Now()).Error; err != nil {
		log.Debugf("cache touch failed for entry %d: %v", entry.ID, err)
	}
	return entry.TranslatedText, true
}

// GetBatch looks up many source texts in one query and returns the hits.
// Last-used timestamps of the hits are touched in a single update.
func (c *TranslationCache) GetBatch(sourceLang, targetLang string, texts []string) map[string]string {
	out := make(map[string]string, len(texts))
	if len(texts) == 0 {
		return out
	}

	trimmed := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			trimmed = append(trimmed, t)
		}
	}

	var entries []Entry
	err := c.db.Where("source_lang = ? AND target_lang = ? AND source_text IN ?",
		sourceLang, targetLang, trimmed).Find(&entries).Error
	if err != nil {
		log.Warnf("cache batch lookup failed: %v", err)
		return out
	}

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		out[e.SourceText] = e.TranslatedText
		ids = append(ids, e.ID)
	}
	if len(ids) > 0 {
		if err := c.db.Model(&Entry{}).Where("id IN ?", ids).
			Update("last_used_at", time.Now()).Error; err != nil {
			log.Debugf("cache batch touch failed: %v", err)
		}
	}
	return out
}

// Put stores one translation, replacing any existing entry for the same key.
// Errors are logged and swallowed.
func (c *TranslationCache) Put(sourceLang, targetLang, text, translated string) {
	c.PutBatch(sourceLang, targetLang, map[string]string{text: translated})
}

// PutBatch upserts many translations and then runs at most one eviction pass.
func (c *TranslationCache) PutBatch(sourceLang, targetLang string, translations map[string]string) {
	if len(translations) == 0 {
		return
	}

	now := time.Now()
	entries := make([]Entry, 0, len(translations))
	for text, translated := range translations {
		text = strings.TrimSpace(text)
		if text == "" || translated == "" {
			continue
		}
		entries = append(entries, Entry{
			SourceLang:     sourceLang,
			TargetLang:     targetLang,
			SourceText:     text,
			TranslatedText: translated,
			LastUsedAt:     now,
		})
	}
	if len(entries) == 0 {
		return
	}

	err := c.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "source_lang"}, {Name: "target_lang"}, {Name: "source_text"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"translated_text", "last_used_at"}),
	}).CreateInBatches(entries, 500).Error
	if err != nil {
		log.Warnf("cache write failed (%d entries): %v", len(entries), err)
		return
	}

	c.maybeEvict()
}

// maybeEvict removes the least recently used entries when the table has grown
// past the ceiling. Each pass deletes at most one batch so a single delete
// stays bounded; a large overshoot from a batched write drains over several
// passes instead of one huge delete.
func (c *TranslationCache) maybeEvict() {
	if c.maxEntries <= 0 {
		return
	}

	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	for {
		var count int64
		if err := c.db.Model(&Entry{}).Count(&count).Error; err != nil {
			log.Warnf("cache count failed: %v", err)
			return
		}
		if count <= int64(c.maxEntries) {
			return
		}

		toDelete := int(count) - c.maxEntries + c.evictionBatch
		if toDelete > c.evictionBatch {
			toDelete = c.evictionBatch
		}
		sub := c.db.Model(&Entry{}).Select("id").Order("last_used_at asc").Limit(toDelete)
		res := c.db.Where("id IN (?)", sub).Delete(&Entry{})
		if res.Error != nil {
			log.Warnf("cache eviction failed: %v", res.Error)
			return
		}
		log.Infof("cache evicted %d entries (was %d, ceiling %d)", res.RowsAffected, count, c.maxEntries)
		if res.RowsAffected == 0 {
			return
		}
	}
}

// Stats reports current occupancy and the on-disk size of the database file.
func (c *TranslationCache) Stats() Stats {
	s := Stats{MaxEntries: c.maxEntries}
	if info, err := os.Stat(c.dbPath); err == nil {
		s.StorageBytes = info.Size()
	}
	if err := c.db.Model(&Entry{}).Count(&s.Entries).Error; err != nil {
		log.Warnf("cache stats failed: %v", err)
		return s
	}
	if s.Entries > 0 {
		var oldest, newest Entry
		if err := c.db.Order("last_used_at asc").First(&oldest).Error; err == nil {
			s.OldestUsed = oldest.LastUsedAt
		}
		if err := c.db.Order("last_used_at desc").First(&newest).Error; err == nil {
			s.NewestUsed = newest.LastUsedAt
		}
	}
	return s
}

// Clear drops all entries.
func (c *TranslationCache) Clear() error {
	return c.db.Where("1 = 1").Delete(&Entry{}).Error
}
