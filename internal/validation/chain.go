// Package validation evaluates ordered lists of rules.  A rule pairs a
// predicate with the failure to report when the predicate does not hold.
// First stops at the first broken rule; All collects every broken rule.
package validation

import (
	"github.com/iliyamo/hotel-reservation/internal/apperror"
)

// Rule is one (predicate, kind, message) entry.  Valid is evaluated
// lazily, so later rules may assume earlier ones held when used with First.
type Rule struct {
	Valid   func() bool
	Kind    apperror.Kind
	Message string
}

// Chain is an ordered rule list.
type Chain []Rule

// Check builds a ValidationFailure rule.
func Check(valid func() bool, msg string) Rule {
	return Rule{Valid: valid, Kind: apperror.ValidationFailure, Message: msg}
}

// Require builds a rule from an already computed condition.
func Require(cond bool, kind apperror.Kind, msg string) Rule {
	return Rule{Valid: func() bool { return cond }, Kind: kind, Message: msg}
}

// Add appends rules and returns the chain for chaining.
func (c Chain) Add(rules ...Rule) Chain {
	return append(c, rules...)
}

// First returns the failure of the first broken rule, or nil.
func (c Chain) First() error {
	for _, r := range c {
		if !r.Valid() {
			return apperror.New(r.Kind, r.Message)
		}
	}
	return nil
}

// All evaluates every rule and returns one failure per broken rule in
// chain order.
func (c Chain) All() []*apperror.Failure {
	var out []*apperror.Failure
	for _, r := range c {
		if !r.Valid() {
			out = append(out, apperror.New(r.Kind, r.Message))
		}
	}
	return out
}
