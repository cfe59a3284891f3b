// Package uid produces DICOM unique identifiers derived from UUIDs, following
// DICOM PS3.5 Annex B.2: the UUID's 16 bytes are read as a little-endian
// unsigned 128-bit integer and rendered in decimal under the root "2.25".
package uid

import (
	"io"
	"math/big"

	"github.com/google/uuid"
)

// Root is the OID arc reserved for UUID derived UIDs, including the trailing dot.
const Root = "2.25."

// MaxLen is the longest UID Encode can produce: the root plus the 39 digits of 2^128-1.
const MaxLen = len(Root) + 39

// AppendEncode appends the UID derived from u to dst and returns the extended buffer.
func AppendEncode(dst []byte, u uuid.UUID) []byte {
	// big.Int wants big-endian magnitude bytes
	var be [16]byte
	for i := range u {
		be[i] = u[len(u)-1-i]
	}
	dst = append(dst, Root...)
	return new(big.Int).SetBytes(be[:]).Append(dst, 10)
}

// Encode returns the UID derived from u. Any 128-bit value is accepted; the
// version and variant bits are not checked.
func Encode(u uuid.UUID) string {
	var buf [MaxLen]byte
	return string(AppendEncode(buf[:0], u))
}

// EncodeTo writes the UID derived from u to w in a single write. The error
// from w, if any, is returned as is.
func EncodeTo(w io.Writer, u uuid.UUID) error {
	var buf [MaxLen]byte
	_, err := w.Write(AppendEncode(buf[:0], u))
	return err
}

// Generate draws a new random (v4) UUID and returns the UID derived from it.
func Generate() string {
	return Encode(uuid.New())
}

// GenerateTo draws a new random (v4) UUID and writes the UID derived from it to w.
func GenerateTo(w io.Writer) error {
	return EncodeTo(w, uuid.New())
}

// EnableRandPool switches the default UUID source to a buffered random pool,
// which is considerably faster for bulk issuance. See uuid.EnableRandPool.
func EnableRandPool() {
	uuid.EnableRandPool()
}
