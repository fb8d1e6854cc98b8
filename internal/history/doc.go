// Package history keeps a SQLite journal of conversion attempts.
//
// Each process run gets a random run ID; every attempt it makes is stored
// with that ID, the input and output paths, the outcome and message, how
// long it took, and the BLAKE2b-256 digest of the input that the converter
// took before running the delegate, so repeated conversions of the same
// content can be spotted.
//
// A [Journal] satisfies converter.Recorder. The journal is only opened when
// CONVERT_HISTORY_DB names a database file.
package history
