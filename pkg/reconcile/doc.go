// Package reconcile merges identity-provider state, OAuth claims and stored
// profile rows into one canonical user view, and drives the account
// lifecycle: signup, credential login, OAuth reconciliation, profile
// completion and compensating cleanup of abandoned accounts.
//
// The lifecycle is a small state machine. A fresh credential signup starts at
// profile-pending (account type set, profile not completed). The OAuth path
// can produce an account with no account type at all; the engine never leaves
// such an account behind, it deletes the identity record and reports the
// attempt as incomplete. Completing the profile is the only transition to the
// completed state.
//
// The canonical user is derived, never stored wholesale. Every lookup joins
// the identity record with the profile row and resolves the profile image by
// precedence: user-uploaded storage reference, then explicit external URL,
// then the OAuth picture claim, then absent.
package reconcile
