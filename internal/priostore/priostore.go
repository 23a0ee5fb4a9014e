// Package priostore implements the external, read-only learned-utility
// priority store (spec.md section 3, "Priority store"; section 4.8,
// "Priority Resolver"). It is a new package -- the teacher never wired a
// learned-utility backend -- but its JSON record shape follows the same
// field-naming conventions the teacher uses for TOML config structs
// (internal/config/types.go).
package priostore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/zeebo/xxh3"
)

// Record is a single learned-utility entry for one file path.
type Record struct {
	// Utility is a learned relevance score in [0, 1]. Blended with the lens's
	// static priority per spec.md section 4.8:
	//
	//	final = round(0.7*static + 0.3*utility*100)
	Utility float64 `json:"utility"`

	// Tags are free-form labels; the tag "always_include" bypasses budget
	// enforcement entirely for this file, same as a lens group's
	// AlwaysInclude.
	Tags []string `json:"tags,omitempty"`

	// Summary is an optional one-line human-authored note shown in
	// diagnostics (e.g. "hot path, touched in 80% of recent incidents").
	Summary string `json:"summary,omitempty"`
}

// HasTag reports whether the record carries the given tag.
func (r Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Store is a read-only lookup of learned-utility records keyed by
// repository-relative path. A nil *Store (or one constructed from an absent
// file) always returns ok=false, making the store non-fatal to absence.
type Store struct {
	records  map[string]Record
	shadow   string
	shadowOK bool
}

// Load reads a JSON-encoded priority store from path. A missing file is not
// an error: Load returns an empty, always-miss Store and logs at debug level,
// since the store is an optional external collaborator (spec.md section 1).
func Load(path string) (*Store, error) {
	if path == "" {
		return &Store{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("priority store absent, proceeding without learned utility", "path", path)
			return &Store{}, nil
		}
		return nil, fmt.Errorf("reading priority store %s: %w", path, err)
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("priority store malformed, proceeding without learned utility",
			"path", path, "error", err)
		return &Store{}, nil
	}

	return &Store{records: records}, nil
}

// Lookup returns the record for path and whether one exists.
func (s *Store) Lookup(path string) (Record, bool) {
	if s == nil || s.records == nil {
		return Record{}, false
	}
	r, ok := s.records[path]
	return r, ok
}

// LoadWithShadow loads the primary store at path plus an optional shadow
// file at shadowPath used purely for cache invalidation: ShadowStale reports
// whether the shadow file's content hash has changed since the store was
// loaded, signaling that the learned-utility data may be out of date.
func LoadWithShadow(path, shadowPath string) (*Store, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	if shadowPath == "" {
		return s, nil
	}

	data, err := os.ReadFile(shadowPath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading shadow file %s: %w", shadowPath, err)
	}

	s.shadow = fmt.Sprintf("%x", xxh3.Hash(data))
	s.shadowOK = true
	return s, nil
}

// ShadowHash returns the xxh3 hash of the shadow file captured at load time,
// and whether a shadow file was present.
func (s *Store) ShadowHash() (string, bool) {
	if s == nil {
		return "", false
	}
	return s.shadow, s.shadowOK
}

// Blend combines a lens's static group priority with a store record's
// learned utility per spec.md section 4.8's weighting:
//
//	final = round(0.7*static + 0.3*utility*100)
//
// staticPriority and the result are both clamped to [0, 100].
func Blend(staticPriority int, utility float64) int {
	if staticPriority < 0 {
		staticPriority = 0
	}
	if staticPriority > 100 {
		staticPriority = 100
	}
	if utility < 0 {
		utility = 0
	}
	if utility > 1 {
		utility = 1
	}

	final := 0.7*float64(staticPriority) + 0.3*utility*100
	rounded := int(final + 0.5)
	if rounded < 0 {
		rounded = 0
	}
	if rounded > 100 {
		rounded = 100
	}
	return rounded
}
