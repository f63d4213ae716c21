// Package textutil canonicalizes, fingerprints, and scores translation-memory
// source texts.
//
// Normalize only collapses whitespace and keeps the caller's casing, so it is
// safe for display. NormalizeForHash additionally applies NFC composition and
// locale-invariant case folding and is the form used for fingerprints and
// similarity scoring. All functions are pure and safe for concurrent use.
package textutil
