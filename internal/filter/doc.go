// Package filter decides, per candidate source file, whether it is compiled and with which flags.
//
// The vendored USB stack is present on disk in full, but only part of it applies to any
// one architecture. A Policy looks at one CandidateNode at a time:
//
//   - files outside the vendored subtree are kept unchanged
//   - Selective compiles allow-listed vendored files with the architecture defines appended
//   - ExcludeAll drops the vendored subtree entirely
//
// Policies never write to the ambient flags they are given, so one flags slice can be
// shared by every compile worker.
package filter
