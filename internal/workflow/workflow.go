package workflow

import (
	"github.com/krupapatkar/appsolution-admin/internal/errs"
)

// Kind identifies which entity's status machine applies.
type Kind string

const (
	KindProduct  Kind = "product"
	KindBlogPost Kind = "blog_post"
	KindPurchase Kind = "purchase"
	KindContact  Kind = "contact"
)

// transitions maps each kind to the set of legal status moves.
// A status absent from the inner map is terminal.
var transitions = map[Kind]map[string][]string{
	KindProduct: {
		"ACTIVE":   {"INACTIVE"},
		"INACTIVE": {"ACTIVE"},
	},
	KindBlogPost: {
		"DRAFT":     {"PUBLISHED"},
		"PUBLISHED": {"DRAFT"},
	},
	KindPurchase: {
		"PENDING":   {"COMPLETED", "FAILED"},
		"COMPLETED": {"REFUNDED"},
		// REFUNDED and FAILED are terminal
	},
	KindContact: {
		"UNREAD": {"READ", "REPLIED"},
		"READ":   {"REPLIED"},
		// REPLIED is terminal
	},
}

// statuses maps each kind to its full status set, used to validate
// caller-supplied values before consulting the transition table.
var statuses = map[Kind][]string{
	KindProduct:  {"ACTIVE", "INACTIVE"},
	KindBlogPost: {"DRAFT", "PUBLISHED"},
	KindPurchase: {"PENDING", "COMPLETED", "REFUNDED", "FAILED"},
	KindContact:  {"UNREAD", "READ", "REPLIED"},
}

// IsStatus reports whether s is a known status for the kind.
func IsStatus(kind Kind, s string) bool {
	for _, known := range statuses[kind] {
		if known == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether moving from -> to is legal for the kind.
// A same-status move is always legal; callers treat it as a no-op.
func CanTransition(kind Kind, from, to string) bool {
	if !IsStatus(kind, from) || !IsStatus(kind, to) {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[kind][from] {
		if next == to {
			return true
		}
	}
	return false
}

// Validate returns an InvalidTransition error when the move is illegal,
// or a Validation error when to is not a status of the kind at all.
func Validate(kind Kind, from, to string) error {
	if !IsStatus(kind, to) {
		return errs.Validation("status", "unknown status "+to)
	}
	if !CanTransition(kind, from, to) {
		return errs.InvalidTransition(string(kind), from, to)
	}
	return nil
}
