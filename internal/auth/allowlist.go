// Package auth decides whether a request sees real or obfuscated data.
//
// Trust comes from one of a fixed set of operator-generated tokens. A token
// may be presented directly as a bearer header or exchanged at login for a
// session cookie. Any problem with a credential downgrades the request to
// guest; only Login reports an error.
package auth

import (
	"crypto/subtle"
	"strings"
)

// AllowList is the immutable set of trusted tokens.
type AllowList struct {
	tokens []string
}

// NewAllowList trims the given tokens and drops blanks and duplicates.
func NewAllowList(tokens ...string) AllowList {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return AllowList{tokens: out}
}

// Len returns the number of trusted tokens.
func (a AllowList) Len() int { return len(a.tokens) }

// Empty reports demo mode: nobody can be trusted.
func (a AllowList) Empty() bool { return len(a.tokens) == 0 }

// Contains reports exact membership. Every entry is compared so timing does
// not reveal which one matched.
func (a AllowList) Contains(token string) bool {
	if token == "" {
		return false
	}
	found := 0
	for _, t := range a.tokens {
		found |= subtle.ConstantTimeCompare([]byte(t), []byte(token))
	}
	return found == 1
}

// Tokens returns a copy of the entries.
func (a AllowList) Tokens() []string {
	out := make([]string, len(a.tokens))
	copy(out, a.tokens)
	return out
}

// EvaluateTrust is the trust decision: an empty allow-list or an absent
// credential is never trusted, otherwise the credential must be an exact
// member of the list.
func EvaluateTrust(cred Credential, allow AllowList) bool {
	if allow.Empty() || !cred.Present() {
		return false
	}
	return allow.Contains(cred.Value)
}
