// Package engine implements the craft beer dialog reducer.
//
// The engine receives one intent event per call, together with the session
// state the platform round-tripped, and produces exactly one dialog action
// plus the updated session state.
//
// ARCHITECTURE:
//
// Classify, then dispatch:
// Classify maps (intent, invocation source, confirmation status, presence of
// slots and attributes) onto a closed set of Transitions. HandleTurn switches
// over that set, so every event lands in exactly one branch and every branch
// returns a valid Response.
//
// Turn processing:
//  1. Classify the event
//  2. Run the transition (catalog lookup, code issue, or checkout)
//  3. Log the turn once with its UUIDv7 turn id
//  4. Return the new Session and Action
//
// There is no state on the Engine beyond its collaborators. Session state
// lives entirely in the dialog.Session carried by the event, so two sessions
// never interact and a single session is never handled concurrently.
//
// ERROR HANDLING:
//
// HandleTurn never fails. Catalog misses, a missing order, a wrong
// confirmation code, and collaborator failures are all turned into a Close
// or ElicitSlot with a user-facing message. Collaborator errors are logged at
// Error level with the failing step.
//
// The checkout pipeline is a single attempt. On failure the session is left
// as it was, including the pending code.
package engine
