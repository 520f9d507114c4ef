package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/raushankrgupta/product-page-generator/ai"
	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/publish"
)

// DefaultCapacity is the number of records a session keeps before evicting the least recently written one
const DefaultCapacity = 200

// maxListItems bounds how far an indexed edit can grow a list
const maxListItems = 50

var (
	ErrRecordNotFound = errors.New("product not found")
	ErrUnknownField   = errors.New("unknown field")
)

// Translator rewrites the translatable fields of a record into another language
type Translator interface {
	Translate(ctx context.Context, fields ai.TranslatableFields, language string) (*ai.Translation, error)
}

// Publisher pushes a record to the store
type Publisher interface {
	Publish(ctx context.Context, record *models.ProductRecord) (*publish.Result, error)
}

// Edit changes one field of a record. For list fields a nil Index replaces the whole list.
type Edit struct {
	Field  string   `json:"field"`
	Index  *int     `json:"index,omitempty"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// Session holds the records the user is currently editing. Records live only in memory,
// at most capacity of them.
type Session struct {
	mu        sync.Mutex
	records   map[string]*models.ProductRecord
	written   map[string]uint64
	seq       uint64
	capacity  int
	translate Translator
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewSession(translator Translator, publisher Publisher, logger *slog.Logger) *Session {
	return &Session{
		records:   make(map[string]*models.ProductRecord),
		written:   make(map[string]uint64),
		capacity:  DefaultCapacity,
		translate: translator,
		publisher: publisher,
		logger:    logger.With("component", "editor"),
		now:       time.Now,
	}
}

// WithCapacity changes how many records the session keeps. n below 1 is ignored.
func (s *Session) WithCapacity(n int) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.capacity = n
		s.evict()
	}
	return s
}

// Put stores a copy of record, replacing any record with the same ID
func (s *Session) Put(record *models.ProductRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record.Clone()
	s.touch(record.ID)
	s.evict()
}

func (s *Session) touch(id string) {
	s.seq++
	s.written[id] = s.seq
}

// evict drops the least recently written records until the session fits its capacity
func (s *Session) evict() {
	for len(s.records) > s.capacity {
		var oldest string
		var oldestSeq uint64
		for id, seq := range s.written {
			if oldest == "" || seq < oldestSeq {
				oldest, oldestSeq = id, seq
			}
		}
		delete(s.records, oldest)
		delete(s.written, oldest)
		s.logger.Debug("evicted record", "id", oldest)
	}
}

// Get returns a copy of the record
func (s *Session) Get(id string) (*models.ProductRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

// Edit applies e to the record and returns the updated copy
func (s *Session) Edit(id string, e Edit) (*models.ProductRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	if field := stringField(&rec.GeneratedCopy, e.Field); field != nil {
		if e.Index != nil {
			return nil, fmt.Errorf("%w: %s is not a list", models.ErrInvalidInput, e.Field)
		}
		*field = e.Value
	} else if list := listField(&rec.GeneratedCopy, e.Field); list != nil {
		if err := setListItem(list, e); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, e.Field)
	}

	rec.UpdatedAt = s.now()
	s.touch(id)
	return rec.Clone(), nil
}

// Translate replaces the text fields of the record with their translation into language.
// On failure the record is left as it was and the error is returned.
func (s *Session) Translate(ctx context.Context, id, language string) (*models.ProductRecord, error) {
	rec, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if s.translate == nil {
		return nil, ai.ErrNotConfigured
	}

	out, err := s.translate.Translate(ctx, ai.TranslatableFields{
		Title:            rec.Title,
		ShortDescription: rec.ShortDescription,
		LongDescription:  rec.LongDescription,
		Benefits:         rec.Benefits,
		Features:         rec.Features,
	}, models.LanguageName(language))
	if err != nil {
		s.logger.Error("translation failed", "id", id, "language", language, "error", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	out.Apply(&current.GeneratedCopy)
	current.Normalize()
	current.Language = language
	current.UpdatedAt = s.now()
	s.touch(id)
	return current.Clone(), nil
}

// Publish pushes the current state of the record to the store
func (s *Session) Publish(ctx context.Context, id string) (*publish.Result, error) {
	rec, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if s.publisher == nil {
		return nil, publish.ErrNotConfigured
	}
	return s.publisher.Publish(ctx, rec)
}

func stringField(c *models.GeneratedCopy, name string) *string {
	switch name {
	case "title":
		return &c.Title
	case "short_description":
		return &c.ShortDescription
	case "long_description":
		return &c.LongDescription
	}
	return nil
}

func listField(c *models.GeneratedCopy, name string) *[]string {
	switch name {
	case "benefits":
		return &c.Benefits
	case "features":
		return &c.Features
	case "tags":
		return &c.Tags
	case "alt_texts":
		return &c.AltTexts
	}
	return nil
}

func setListItem(list *[]string, e Edit) error {
	if e.Index == nil {
		if e.Values == nil {
			*list = []string{}
			return nil
		}
		*list = append([]string{}, e.Values...)
		return nil
	}

	i := *e.Index
	if i < 0 || i >= maxListItems {
		return fmt.Errorf("%w: index %d out of range", models.ErrInvalidInput, i)
	}
	for len(*list) <= i {
		*list = append(*list, "")
	}
	(*list)[i] = e.Value
	return nil
}
