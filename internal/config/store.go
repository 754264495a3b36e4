package config

import (
	"encoding/json"
	"os"
	"sync"
)

// SectionOverride is a partial section record from the persisted document.
// Nil fields leave the default untouched; set fields win per-field.
type SectionOverride struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Weight  *float64 `json:"weight,omitempty"`
	Order   *int     `json:"order,omitempty"`
	Label   *string  `json:"label,omitempty"`
}

// CheckOverride is a partial check record from the persisted document.
type CheckOverride struct {
	Enabled    *bool             `json:"enabled,omitempty"`
	Weight     *float64          `json:"weight,omitempty"`
	ResultName *string           `json:"result_name,omitempty"`
	Params     map[string]any    `json:"params,omitempty"`
	Texts      map[string]string `json:"texts,omitempty"`
}

// Document is the persisted override document. Only these two sections are
// recognized; anything else in the file is dropped on load and never written
// back.
type Document struct {
	Sections map[string]SectionOverride `json:"sections"`
	Checks   map[string]CheckOverride   `json:"checks"`
}

// EmptyDocument returns a valid document with no overrides.
func EmptyDocument() *Document {
	return &Document{
		Sections: map[string]SectionOverride{},
		Checks:   map[string]CheckOverride{},
	}
}

// LoadDocument reads an override document from disk. A missing or malformed
// file yields the empty document: configuration trouble must never surface
// as an evaluation failure.
func LoadDocument(path string) *Document {
	raw, err := os.ReadFile(path)
	if err != nil {
		return EmptyDocument()
	}
	doc := EmptyDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		return EmptyDocument()
	}
	if doc.Sections == nil {
		doc.Sections = map[string]SectionOverride{}
	}
	if doc.Checks == nil {
		doc.Checks = map[string]CheckOverride{}
	}
	return doc
}

// SaveDocument writes the two recognized sections of the document to disk.
func SaveDocument(path string, doc *Document) error {
	out := Document{Sections: doc.Sections, Checks: doc.Checks}
	raw, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Merge applies an override document onto the built-in defaults, producing a
// new effective configuration. The defaults are deep-copied first, so the
// canonical tables are never mutated; unknown ids in the document are
// ignored. Merging is idempotent.
func Merge(defaults *Config, doc *Document) *Config {
	eff := deepCopy(defaults)
	if doc == nil {
		return eff
	}
	for id, ov := range doc.Sections {
		sc, ok := eff.Sections[id]
		if !ok {
			continue
		}
		if ov.Enabled != nil {
			sc.Enabled = *ov.Enabled
		}
		if ov.Weight != nil {
			sc.Weight = *ov.Weight
		}
		if ov.Order != nil {
			sc.Order = *ov.Order
		}
		if ov.Label != nil {
			sc.Label = *ov.Label
		}
	}
	for key, ov := range doc.Checks {
		cc, ok := eff.Checks[key]
		if !ok {
			continue
		}
		if ov.Enabled != nil {
			cc.Enabled = *ov.Enabled
		}
		if ov.Weight != nil {
			cc.Weight = *ov.Weight
		}
		if ov.ResultName != nil {
			cc.ResultName = *ov.ResultName
		}
		for k, v := range ov.Params {
			if cc.Params == nil {
				cc.Params = map[string]any{}
			}
			cc.Params[k] = v
		}
		for k, v := range ov.Texts {
			if cc.Texts == nil {
				cc.Texts = map[string]string{}
			}
			cc.Texts[k] = v
		}
	}
	return eff
}

func deepCopy(cfg *Config) *Config {
	out := &Config{
		Sections: make(map[string]*SectionConfig, len(cfg.Sections)),
		Checks:   make(map[string]*CheckConfig, len(cfg.Checks)),
	}
	for id, sc := range cfg.Sections {
		copied := *sc
		out.Sections[id] = &copied
	}
	for key, cc := range cfg.Checks {
		copied := *cc
		copied.Params = copyAnyMap(cc.Params)
		if cc.Texts != nil {
			copied.Texts = make(map[string]string, len(cc.Texts))
			for k, v := range cc.Texts {
				copied.Texts[k] = v
			}
		}
		out.Checks[key] = &copied
	}
	return out
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyAnyMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// Store owns the persisted override document and hands out effective
// configuration snapshots. The orchestrator takes exactly one snapshot per
// evaluation, so concurrent override edits can never change a run midway.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  *Document
}

// NewStore loads the override document at path (missing or malformed files
// degrade to no overrides).
func NewStore(path string) *Store {
	return &Store{path: path, doc: LoadDocument(path)}
}

// Snapshot returns a freshly merged effective configuration.
func (s *Store) Snapshot() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Merge(Defaults(), s.doc)
}

// Document returns a copy of the current override document. Mutations of the
// copy never reach the store; changes go through Apply.
func (s *Store) Document() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyDocument(s.doc)
}

func copyDocument(doc *Document) *Document {
	out := EmptyDocument()
	for id, ov := range doc.Sections {
		out.Sections[id] = ov
	}
	for key, ov := range doc.Checks {
		ov.Params = copyAnyMap(ov.Params)
		if ov.Texts != nil {
			texts := make(map[string]string, len(ov.Texts))
			for k, v := range ov.Texts {
				texts[k] = v
			}
			ov.Texts = texts
		}
		out.Checks[key] = ov
	}
	return out
}

// Apply replaces the override document.
func (s *Store) Apply(doc *Document) {
	if doc == nil {
		doc = EmptyDocument()
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Save persists the current document to the store's path.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SaveDocument(s.path, s.doc)
}
