// Package converter routes conversion requests to the delegate that can
// perform them and reports the outcome.
//
// A [Registry] maps a classified input and an output format to a delegate:
// images by output format, video and audio for any format, documents and
// spreadsheets by (input extension, output extension). [Converter.ConvertFile]
// checks the input exists, looks up the delegate, runs it and turns every
// outcome, including failures, into a [Result]. [Converter.ConvertBatch]
// does the same for each regular file in a directory, sequentially.
//
// Failures are classified by the sentinel errors in this package so callers
// can use errors.Is on Result.Err:
//
//   - ErrFileNotFound: the input does not exist
//   - ErrUnsupportedType: the input extension is not recognised
//   - ErrUnsupportedConversion: no delegate converts the input to the format
//   - ErrMissingDependency: libvips or LibreOffice is needed but absent
//   - ErrToolMissing: the ffmpeg binary could not be run
//
// Anything else a delegate reports is a *DelegateError carrying the
// delegate's message verbatim. A failed delegate's partial output is removed.
package converter
