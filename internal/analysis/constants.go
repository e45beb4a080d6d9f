// Package analysis recognizes Objective-C selector alias stubs in AArch64
// code and recovers the selector each stub forwards to.
package analysis

// Constants for analysis operations
const (
	// IdiomWidth is the number of instructions compared against an idiom.
	IdiomWidth = 5

	// StubBlockLen and LegacyStubBlockLen are the only basic block lengths
	// (in bytes) an alias stub can have.
	StubBlockLen       = 20
	LegacyStubBlockLen = 16

	// MaxSelectorLength bounds the selector read loop.
	MaxSelectorLength = 4096

	// DefaultPrefix is prepended to the selector to form the new name.
	DefaultPrefix = "ALIAS__"
)
