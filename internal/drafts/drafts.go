// Package drafts stores work in progress: the current field snapshot, the
// generator form, and documents saved from the editor.
package drafts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nikhilbhutani/etpassistant/internal/document"
	"github.com/nikhilbhutani/etpassistant/internal/kv"
)

const (
	CurrentKey = "etp_draft"
	FormKey    = "etp_generator_draft"
	IndexKey   = "etp_index"
	docPrefix  = "etp_"
)

var (
	ErrNoDraft       = errors.New("Nenhum rascunho encontrado")
	ErrTitleRequired = errors.New("Digite um título para o documento")
	ErrNotFound      = errors.New("document not found")
)

// Saved is one document kept from the editor.
type Saved struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	kv  kv.Store
	now func() time.Time
	mu  sync.Mutex
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store, now: time.Now}
}

// SaveCurrent snapshots the critical-field values.
func (s *Store) SaveCurrent(ctx context.Context, values document.Values) error {
	if err := kv.SetJSON(ctx, s.kv, CurrentKey, values); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *Store) LoadCurrent(ctx context.Context) (document.Values, error) {
	var v document.Values
	if err := kv.GetJSON(ctx, s.kv, CurrentKey, &v); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNoDraft
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return v, nil
}

func (s *Store) ClearCurrent(ctx context.Context) error {
	return s.kv.Remove(ctx, CurrentKey)
}

func (s *Store) SaveForm(ctx context.Context, f document.Form) error {
	if err := kv.SetJSON(ctx, s.kv, FormKey, f); err != nil {
		return fmt.Errorf("save form: %w", err)
	}
	return nil
}

// LoadForm returns the saved generator form, or an empty form when there
// is none.
func (s *Store) LoadForm(ctx context.Context) (document.Form, error) {
	var f document.Form
	err := kv.GetJSON(ctx, s.kv, FormKey, &f)
	if errors.Is(err, kv.ErrNotFound) {
		return document.Form{}, nil
	}
	if err != nil {
		return document.Form{}, fmt.Errorf("load form: %w", err)
	}
	return f, nil
}

// Save keeps an editor document under etp_<unix millis>.
func (s *Store) Save(ctx context.Context, title, content string) (*Saved, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		taken[id] = true
	}

	now := s.now()
	stamp := now.UnixMilli()
	for taken[fmt.Sprintf("%s%d", docPrefix, stamp)] {
		stamp++
	}
	doc := &Saved{
		ID:        fmt.Sprintf("%s%d", docPrefix, stamp),
		Title:     title,
		Content:   content,
		CreatedAt: now,
	}

	if err := kv.SetJSON(ctx, s.kv, doc.ID, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := kv.SetJSON(ctx, s.kv, IndexKey, append(ids, doc.ID)); err != nil {
		return nil, fmt.Errorf("update index: %w", err)
	}
	return doc, nil
}

// Get returns a saved document. Only ids listed in the index resolve, so
// the draft and form keys are never read as documents.
func (s *Store) Get(ctx context.Context, id string) (*Saved, error) {
	s.mu.Lock()
	ids, err := s.index(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(ids, id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.load(ctx, id)
}

func (s *Store) load(ctx context.Context, id string) (*Saved, error) {
	var doc Saved
	if err := kv.GetJSON(ctx, s.kv, id, &doc); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &doc, nil
}

// List returns saved documents, newest first. Index entries whose document
// is gone are skipped.
func (s *Store) List(ctx context.Context) ([]Saved, error) {
	s.mu.Lock()
	ids, err := s.index(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Saved, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		doc, err := s.load(ctx, ids[i])
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.index(ctx)
	if err != nil {
		return err
	}
	kept := ids[:0]
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.kv.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return kv.SetJSON(ctx, s.kv, IndexKey, kept)
}

func (s *Store) index(ctx context.Context) ([]string, error) {
	var ids []string
	err := kv.GetJSON(ctx, s.kv, IndexKey, &ids)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return ids, nil
}
