// Package codec defines how history payloads are turned into their stored
// byte form.
//
// A Codec encodes an arbitrary payload value into bytes and back. Encoding
// at insertion time is what gives the history engine its deep-copy
// guarantee: once a payload is encoded, later mutations of the caller's
// value cannot reach the stored form.
//
// A Compressor optionally shrinks the encoded bytes before storage. The
// manager decides whether to compress purely from the encoded size, never
// from the payload's meaning, and falls back to the uncompressed form if
// compression fails.
package codec
