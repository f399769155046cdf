// Package core provides the business logic for the spreadsheet viewer.
//
// This package ties the codec, grid and transfer packages together and is
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Service: The main entry point for all operations (upload, view, edit,
//     export, clear).
//   - Selections: Every upload is stamped with a generation. Only the newest
//     generation for a session may commit its grid.
//   - Upload limiter: A semaphore bounding concurrent decodes.
//   - Purge scheduler: Removes expired grids from the transfer store.
//
// # Upload Flow
//
// An upload moves through these steps:
//
//  1. [codec.Detect] picks the format from the file name and MIME type.
//     A rejected file leaves the session's grid unchanged.
//  2. The upload takes a generation and waits for a limiter slot.
//  3. [codec.DecodeReader] reads at most the configured size and decodes.
//  4. If the generation is still the newest, the grid replaces the session's
//     stored grid. Otherwise the upload fails with [ErrSuperseded].
//
// A decode failure on the newest selection clears the session, so the viewer
// falls back to the empty grid.
//
// # Viewing and Editing
//
// [Service.Grid] always returns the stored grid normalized to at least the
// configured minimum shape (10 x 12 by default). An empty session yields the
// empty grid of that shape. Edits replace the stored grid wholesale.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL099: Validation errors (file type, cell address)
//   - FILE001-FILE099: File errors (size, unreadable content)
//   - EXP001-EXP099: Export errors
//   - UPL001-UPL099: Upload errors (busy, superseded, cancelled, timeout)
package core
