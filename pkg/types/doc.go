// Package types defines the error taxonomy and diagnostic records shared
// by every layer of the RTF/Markdown conversion core: the tokenizer, the
// two parsers, the two generators, and the embedding boundary.
//
// Design goals:
//   - Typed errors with stable categories (parse/resource-limit/security/...).
//   - Paranoid bounds checking; never panic on malformed input.
//   - Diagnostics collection that is always on and allocates nothing
//     beyond an empty report when no issue is recorded.
//
// This package has no dependencies beyond the standard library.
package types
