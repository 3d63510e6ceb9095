package spectrogram

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
)

// pngSignature is the fixed 8-byte PNG file header.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// EncodePNG serializes a pixel grid as a minimal truecolor PNG: signature,
// IHDR, one zlib-compressed IDAT with filter type 0 on every scanline, IEND.
// No ancillary chunks are written, so identical grids produce identical bytes.
//
// The stdlib image/png encoder applies adaptive per-scanline filtering, which
// changes the compressed stream; this writer exists to keep the output byte
// layout pinned to the reference encoder.
func EncodePNG(grid *PixelGrid) []byte {
	var out bytes.Buffer
	out.Write(pngSignature)

	// IHDR: width, height, bit depth 8, color type 2 (truecolor),
	// compression 0, filter 0, interlace 0
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(grid.Width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(grid.Height))
	ihdr[8] = 8
	ihdr[9] = 2
	writeChunk(&out, "IHDR", ihdr)

	// Raw scanlines: one filter byte (0 = None) before each row of RGB bytes
	stride := grid.Width * 3
	raw := make([]byte, 0, grid.Height*(stride+1))
	for row := 0; row < grid.Height; row++ {
		raw = append(raw, 0)
		raw = append(raw, grid.Pix[row*stride:(row+1)*stride]...)
	}

	var compressed bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&compressed, zlib.BestCompression)
	zw.Write(raw)
	zw.Close()
	writeChunk(&out, "IDAT", compressed.Bytes())

	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

// writeChunk emits a PNG chunk: big-endian data length, 4-byte type tag, the
// data, then CRC-32 (IEEE) over tag+data.
func writeChunk(out *bytes.Buffer, tag string, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	out.Write(length[:])

	out.WriteString(tag)
	out.Write(data)

	crc := crc32.NewIEEE()
	crc.Write([]byte(tag))
	crc.Write(data)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	out.Write(sum[:])
}
