package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrNotPacked is returned when data does not start with the container magic.
	ErrNotPacked = errors.New("codec: not a packed asset")
	// ErrCorrupt is returned when a container fails validation.
	ErrCorrupt = errors.New("codec: corrupt packed asset")
	// ErrUnknownCompression is returned for an unsupported compression id.
	ErrUnknownCompression = errors.New("codec: unknown compression")
	// ErrTooLarge is returned when the payload exceeds the format's 4 GiB limit.
	ErrTooLarge = errors.New("codec: payload too large")
)

const (
	containerVersion = 1
	headerSize       = 24
)

var magic = [4]byte{'A', 'G', 'P', 'K'}

// Header layout (little endian):
//
//	[0:4]   magic "AGPK"
//	[4]     version
//	[5]     compression
//	[6:8]   reserved
//	[8:12]  uncompressed size
//	[12:16] stored size (0 = stored uncompressed)
//	[16:24] xxhash64 of the uncompressed payload
type header struct {
	compression  Compression
	uncompressed uint32
	stored       uint32
	checksum     uint64
}

// IsPacked reports whether data starts with a container header.
func IsPacked(data []byte) bool {
	return len(data) >= headerSize && bytes.Equal(data[:4], magic[:])
}

// Pack wraps payload in a container compressed with c. Payloads that do not
// shrink are stored uncompressed.
func Pack(payload []byte, c Compression) ([]byte, error) {
	if len(payload) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	h := header{
		compression:  c,
		uncompressed: uint32(len(payload)),
		checksum:     xxhash.Sum64(payload),
	}

	body := payload
	if c != CompressionNone && len(payload) > 0 {
		compressed, err := compress(c, payload)
		if err != nil {
			return nil, err
		}
		// Keep compression only when it saves at least 10%.
		if compressed != nil && len(compressed) < len(payload)*9/10 {
			body = compressed
			h.stored = uint32(len(compressed))
		}
	}

	out := make([]byte, headerSize, headerSize+len(body))
	copy(out[0:4], magic[:])
	out[4] = containerVersion
	out[5] = byte(h.compression)
	binary.LittleEndian.PutUint32(out[8:], h.uncompressed)
	binary.LittleEndian.PutUint32(out[12:], h.stored)
	binary.LittleEndian.PutUint64(out[16:], h.checksum)
	return append(out, body...), nil
}

// Unpack validates a container and returns its payload.
func Unpack(data []byte) ([]byte, error) {
	if !IsPacked(data) {
		return nil, ErrNotPacked
	}
	if v := data[4]; v != containerVersion {
		return nil, fmt.Errorf("%w: version %d", ErrCorrupt, v)
	}

	h := header{
		compression:  Compression(data[5]),
		uncompressed: binary.LittleEndian.Uint32(data[8:]),
		stored:       binary.LittleEndian.Uint32(data[12:]),
		checksum:     binary.LittleEndian.Uint64(data[16:]),
	}
	body := data[headerSize:]

	var payload []byte
	if h.stored == 0 {
		if uint64(len(body)) != uint64(h.uncompressed) {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		payload = body
	} else {
		if uint64(len(body)) != uint64(h.stored) {
			return nil, fmt.Errorf("%w: truncated", ErrCorrupt)
		}
		var err error
		if payload, err = decompress(h.compression, body, h.uncompressed); err != nil {
			return nil, err
		}
	}

	if xxhash.Sum64(payload) != h.checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return payload, nil
}

// UnpackNamed unpacks data when name carries a compression suffix or data
// starts with a container header, and returns data unchanged otherwise.
func UnpackNamed(name string, data []byte) ([]byte, error) {
	if c, _ := CompressionForName(name); c == CompressionNone && !IsPacked(data) {
		return data, nil
	}
	return Unpack(data)
}
