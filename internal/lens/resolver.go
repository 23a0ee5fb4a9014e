package lens

import (
	"github.com/codebrief/codebrief/internal/pipeline"
	"github.com/codebrief/codebrief/internal/priostore"
)

// Resolver assigns a final Priority and AlwaysInclude flag to each
// FileDescriptor by blending a resolved Lens's static group priority with an
// optional priostore.Store's learned utility (spec.md section 4.8).
type Resolver struct {
	lens    *Lens
	matcher *GroupMatcher
	store   *priostore.Store
}

// NewResolver constructs a Resolver from an already-resolved Lens and an
// optional priority store (nil is a valid, always-miss store).
func NewResolver(l *Lens, store *priostore.Store) *Resolver {
	return &Resolver{
		lens:    l,
		matcher: NewGroupMatcher(l),
		store:   store,
	}
}

// Resolve sets fd.Priority and fd.AlwaysInclude in place.
//
// Priority resolution order (spec.md section 4.8):
//  1. Match the file against the lens's priority groups to get a static
//     priority (DefaultPriority if unmatched).
//  2. Look up a learned-utility record for the same path. If present, blend
//     it with the static priority via priostore.Blend.
//  3. A group's AlwaysInclude, or a store record tagged "always_include",
//     sets fd.AlwaysInclude regardless of the blended priority.
func (r *Resolver) Resolve(fd *pipeline.FileDescriptor) {
	group, staticPriority, groupAlways, _ := r.matcher.Match(fd.Path)

	final := staticPriority
	always := groupAlways

	if record, ok := r.store.Lookup(fd.Path); ok {
		final = priostore.Blend(staticPriority, record.Utility)
		if record.HasTag("always_include") {
			always = true
		}
	}

	fd.Priority = final
	fd.AlwaysInclude = always

	if group.TruncationOverride != "" {
		fd.TruncationMode = group.TruncationOverride
	}
}

// ResolveAll applies Resolve to every descriptor in files.
func (r *Resolver) ResolveAll(files []*pipeline.FileDescriptor) {
	for _, fd := range files {
		r.Resolve(fd)
	}
}
