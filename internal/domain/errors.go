package domain

import "errors"

// Workflow errors shared by the invitation and maintenance flows.
//
// ErrNotFoundOrExpired deliberately covers "no such token", "already
// consumed" and "past expiry". Unauthenticated callers present tokens from
// emailed links; answering more precisely would turn the endpoint into a
// token-guessing oracle.
var (
	ErrNotFoundOrExpired = errors.New("invitation or request not found, already used, or expired")

	// ErrAlreadyClaimed is returned to the loser of a concurrent claim race.
	ErrAlreadyClaimed = errors.New("invitation has already been claimed")

	// ErrTransitionFailed covers persistence failures unrelated to record state.
	ErrTransitionFailed = errors.New("state transition failed")

	// ErrUpstreamDependencyFailed covers identity or delivery collaborator failures.
	ErrUpstreamDependencyFailed = errors.New("upstream dependency failed")
)
