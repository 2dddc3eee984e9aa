// Package generation defines the interfaces between the processing
// pipeline and the external AI services it leans on: a text Generator for
// search queries and solutions, and a VideoSearcher for lecture video
// lookup. Concrete providers live under internal/platform and own their
// retry and key rotation behavior; this package only fixes the contract
// and the error taxonomy callers branch on.
package generation
