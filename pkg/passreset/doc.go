// Package passreset implements the password recovery and change flows.
//
// Recovery tokens are single use. The UsedTokenSet records consumed tokens
// with reserve/release semantics: a reservation is taken before the token is
// verified so two concurrent attempts with the same token cannot both
// succeed, and released again if verification or the password update fails,
// so a typo does not burn the token.
//
// Initiating recovery never reveals whether an email is registered; the
// operation reports success regardless of a match.
package passreset
