// Package state stores committed baselines of reconciled documents.
//
// A baseline is the "original" side of a (target, original) pair: the tree
// that was current when changes were last persisted. Store implementations
// only load and save one snapshot per Ref; Baselines layers optimistic
// concurrency (ETag) and snapshot identifiers on top.
//
// Deterministic keys:
//
//	Ref.Identifier() renders "system/<domain>/<document>" for the system scope
//	and "<scope>/<id>/<domain>/<document>" for tenant, org, team and user.
package state
