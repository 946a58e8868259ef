// Package download streams HTTP response bodies to disk while verifying
// a digest of the raw bytes, optionally decoding compressed payloads and
// re-encoding the output as an LZ4 frame.
//
// # Single Download
//
// [Handle] writes the (possibly decoded) body to a temporary file
// alongside the destination path, then atomically renames it once the
// digest of every received byte has been checked:
//
//	err := download.Handle(ctx, resp.Body, resp.ContentLength, destPath, logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//		download.WithCodec(download.CodecFor(name)),
//	)
//
// On any failure, including a digest mismatch detected at end of stream,
// the temporary file is removed and destPath is left untouched.
//
// # Building Blocks
//
// The stages [Handle] composes are usable on their own:
// [VerifyingReader] hashes a stream and checks it at EOF, [Codec] selects a
// decoder by file suffix, and [AtomicFile] implements write-then-rename.
package download
