// Package codec translates between raw spreadsheet bytes and [grid.Grid].
//
// # Formats
//
// Four formats are known. XLSX, XLS and CSV can be uploaded; all four,
// including JSON, can be exported and decoded:
//
//	Format  Decode                        Encode
//	XLSX    excelize, first sheet         excelize, single sheet "Sheet1"
//	XLS     package biff, first sheet     BIFF8 writer in package biff
//	CSV     encoding/csv, every line      encoding/csv, "\n" line endings
//	JSON    canonical transfer form       canonical transfer form
//
// The caller picks the format. Decode never sniffs content; use [Detect] at
// the upload boundary to turn a file name and MIME type into a Format.
//
// # Errors
//
// Every failure is typed:
//
//   - [*ValidationError]: the upload is not an accepted spreadsheet type
//   - [*DecodeError]: the bytes are not valid for the declared format
//   - [*EncodeError]: the format is unsupported or the codec failed
//
// A failed decode never returns a partial grid.
package codec
