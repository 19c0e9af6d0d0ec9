package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type material struct {
	Name      string  `json:"name"`
	Roughness float64 `json:"roughness"`
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			var got material
			require.NoError(t, c.Unmarshal(MustMarshal(c, material{Name: "brick", Roughness: 0.8}), &got))
			assert.Equal(t, material{Name: "brick", Roughness: 0.8}, got)
		})
	}

	_, ok := ByName("xml")
	assert.False(t, ok)
}

func TestGoJSON_Strict(t *testing.T) {
	var m material
	err := GoJSON{}.UnmarshalStrict([]byte(`{"name":"x","shininess":3}`), &m)
	assert.Error(t, err)

	require.NoError(t, GoJSON{}.UnmarshalStrict([]byte(`{"name":"x"}`), &m))
	assert.Equal(t, "x", m.Name)
}

func TestPackUnpack(t *testing.T) {
	compressible := bytes.Repeat([]byte("texel"), 2000)
	random := []byte("xq9#k2")

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			for _, payload := range [][]byte{compressible, random, {}} {
				packed, err := Pack(payload, c)
				require.NoError(t, err)
				assert.True(t, IsPacked(packed))

				got, err := Unpack(packed)
				require.NoError(t, err)
				assert.Equal(t, len(payload), len(got))
				assert.True(t, bytes.Equal(payload, got))
			}
		})
	}
}

func TestPack_Compresses(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 10000)
	packed, err := Pack(payload, CompressionLZ4)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(payload)/10)
}

func TestUnpack_Errors(t *testing.T) {
	_, err := Unpack([]byte("plain text, definitely not packed"))
	assert.ErrorIs(t, err, ErrNotPacked)

	packed, err := Pack(bytes.Repeat([]byte("abc"), 1000), CompressionZstd)
	require.NoError(t, err)

	truncated := packed[:len(packed)-1]
	_, err = Unpack(truncated)
	assert.ErrorIs(t, err, ErrCorrupt)

	flipped := bytes.Clone(packed)
	flipped[16] ^= 0xff // checksum
	_, err = Unpack(flipped)
	assert.ErrorIs(t, err, ErrCorrupt)

	version := bytes.Clone(packed)
	version[4] = 99
	_, err = Unpack(version)
	assert.ErrorIs(t, err, ErrCorrupt)

	unknown := bytes.Clone(packed)
	unknown[5] = 7
	_, err = Unpack(unknown)
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestCompressionForName(t *testing.T) {
	c, base := CompressionForName("textures/grass.png.lz4")
	assert.Equal(t, CompressionLZ4, c)
	assert.Equal(t, "textures/grass.png", base)

	c, base = CompressionForName("terrain.png.zst")
	assert.Equal(t, CompressionZstd, c)
	assert.Equal(t, "terrain.png", base)

	c, base = CompressionForName("plain.png")
	assert.Equal(t, CompressionNone, c)
	assert.Equal(t, "plain.png", base)
}

func TestUnpackNamed(t *testing.T) {
	raw := []byte("raw bytes")
	got, err := UnpackNamed("a.png", raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	packed, err := Pack(raw, CompressionLZ4)
	require.NoError(t, err)
	got, err = UnpackNamed("a.png", packed)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = UnpackNamed("a.png.lz4", raw)
	assert.ErrorIs(t, err, ErrNotPacked)
}
