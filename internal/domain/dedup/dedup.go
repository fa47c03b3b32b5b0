// Package dedup decides whether two transactions captured through different
// paths describe the same real-world purchase.
//
// The detector uses three checks, all of which must hold:
//   - Amount within a currency-unit epsilon (default 1 cent)
//   - Same calendar date (day, month, year; time-of-day ignored)
//   - Title similarity: mutual substring containment, or normalized
//     Levenshtein similarity above a threshold (default 0.7)
//
// Detection is a linear scan over the already-accepted list, so a full pass
// over n candidates costs O(n²). Fine for interactive list sizes (hundreds
// of transactions); an index would be needed well before tens of thousands.
//
// Example usage:
//
//	d := dedup.NewDetector(dedup.DefaultConfig())
//	unique := d.Filter(candidates)
package dedup

import (
	"math"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/finze-app/finze-backend/internal/domain/transaction"
)

// Config holds detector thresholds.
type Config struct {
	AmountTolerance     float64 // currency-unit epsilon, default 0.01 (1 cent)
	SimilarityThreshold float64 // title similarity cutoff, default 0.7
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AmountTolerance:     0.01,
		SimilarityThreshold: 0.7,
	}
}

// Detector identifies near-duplicate transactions.
type Detector struct {
	config Config
}

// NewDetector creates a detector with the given config.
func NewDetector(config Config) *Detector {
	return &Detector{config: config}
}

// Filter runs the candidates in order and keeps each one that is not a
// duplicate of an earlier kept candidate. Order matters: when two candidates
// are judged duplicates, the one appearing first in the slice survives.
func (d *Detector) Filter(candidates []transaction.Transaction) []transaction.Transaction {
	accepted := make([]transaction.Transaction, 0, len(candidates))
	for _, c := range candidates {
		if !d.IsDuplicate(c, accepted) {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// IsDuplicate reports whether candidate is a near-duplicate of any already
// accepted transaction. First match wins; a candidate failing any one check
// against every accepted transaction is not a duplicate.
func (d *Detector) IsDuplicate(candidate transaction.Transaction, accepted []transaction.Transaction) bool {
	for _, a := range accepted {
		if d.isPair(candidate, a) {
			return true
		}
	}
	return false
}

func (d *Detector) isPair(a, b transaction.Transaction) bool {
	if math.Abs(a.Amount-b.Amount) >= d.config.AmountTolerance {
		return false
	}
	if a.DateKey() != b.DateKey() {
		return false
	}
	return d.titlesMatch(a.Title, b.Title)
}

// titlesMatch applies the substring-or-similarity rule on lower-cased titles.
func (d *Detector) titlesMatch(t1, t2 string) bool {
	s1 := strings.ToLower(strings.TrimSpace(t1))
	s2 := strings.ToLower(strings.TrimSpace(t2))

	// An empty title only ever matches another empty title; without this
	// the substring rule would match it against everything.
	if s1 == "" || s2 == "" {
		return s1 == s2
	}
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return true
	}
	return Similarity(s1, s2) > d.config.SimilarityThreshold
}

// Similarity returns the normalized Levenshtein similarity of two strings:
// (maxLen - editDistance) / maxLen, computed over runes. Two empty strings
// have similarity 1.0.
func Similarity(s1, s2 string) float64 {
	r1 := []rune(s1)
	r2 := []rune(s2)

	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshtein.DistanceForStrings(r1, r2, levenshtein.DefaultOptions)
	return float64(maxLen-distance) / float64(maxLen)
}
