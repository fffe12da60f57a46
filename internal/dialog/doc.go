// Package dialog provides the typed values exchanged between the dialog
// platform and the reducer.
//
// This package contains value types and their codecs only. It imports
// internal/catalog for the Entry type and nothing else internal, so every
// other package can depend on it without cycles.
//
// Key constraints:
//   - Session is a value. Methods that change it return a new Session.
//   - Session.Order == nil means "no order in progress"; an empty Order is
//     an order that has been started but holds no beers.
//   - Flat string attributes exist only at the platform boundary
//     (EncodeSession / DecodeSession). Inside the reducer the order is a
//     typed []catalog.Entry.
package dialog
