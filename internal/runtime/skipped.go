package runtime

import "github.com/google/uuid"

// NewSkippedSectionID mints a fresh identifier for one entry into skipped
// (speculative dry-run) mode, used as the key into every binding's and
// object property's alternate-values map.
func NewSkippedSectionID() string {
	return uuid.NewString()
}

// EnterSkipped pushes a new skipped-section id onto ctx and returns it,
// unless filename is blacklisted in the realm's configuration, in which
// case it returns "" and ok=false — the caller should then evaluate the
// branch normally rather than speculatively.
func EnterSkipped(ctx *ExecutionContext, filename string) (id string, ok bool) {
	if ctx == nil {
		return "", false
	}
	if ctx.realm != nil && ctx.realm.IsBlacklisted(filename) {
		return "", false
	}
	id = NewSkippedSectionID()
	ctx.pushSkipped(id)
	return id, true
}

// ExitSkipped pops the innermost skipped-section id pushed by EnterSkipped.
func ExitSkipped(ctx *ExecutionContext) {
	if ctx != nil {
		ctx.popSkipped()
	}
}
