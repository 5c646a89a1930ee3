package pak

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// fixtureEntry describes one entry for hand-built archive fixtures.
type fixtureEntry struct {
	// path is the raw stored path, possibly including the mount point.
	path string
	// data is the stored payload (compressed form for compressed entries).
	data []byte
	// uncompressedSize is the final size; zero means len(data).
	uncompressedSize uint64
	// method is the raw on-disk method field including the encrypted bit.
	method uint32
	// blocks are (start, end) ranges relative to the entry offset. For a
	// nonzero method with no blocks a zero count is still written.
	blocks [][2]uint64
	// timestamp is written only for version >= 8 archives.
	timestamp uint64
}

// writeIndexString appends one narrow length-prefixed NUL-terminated string.
func writeIndexString(buf *bytes.Buffer, s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)+1))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
	buf.WriteByte(0)
}

// buildPakBytes assembles a complete PAK archive in memory.
func buildPakBytes(t *testing.T, version uint32, mountPoint string, legacyFooter bool, encryptedIndex bool, entries []fixtureEntry) []byte {
	t.Helper()

	var payload bytes.Buffer
	offsets := make([]uint64, len(entries))
	for i, e := range entries {
		offsets[i] = uint64(payload.Len())
		payload.Write(e.data)
	}

	var index bytes.Buffer
	writeIndexString(&index, mountPoint)

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(entries)))
	index.Write(countBuf[:])

	for i, e := range entries {
		writeIndexString(&index, e.path)

		usize := e.uncompressedSize
		if usize == 0 {
			usize = uint64(len(e.data))
		}

		var fields [28]byte
		binary.LittleEndian.PutUint64(fields[0:8], offsets[i])
		binary.LittleEndian.PutUint64(fields[8:16], uint64(len(e.data)))
		binary.LittleEndian.PutUint64(fields[16:24], usize)
		binary.LittleEndian.PutUint32(fields[24:28], e.method)
		index.Write(fields[:])

		if version >= timestampsFrom {
			var ts [8]byte
			binary.LittleEndian.PutUint64(ts[:], e.timestamp)
			index.Write(ts[:])
		}

		index.Write(make([]byte, hashSize))

		if e.method != 0 {
			var blockCount [4]byte
			binary.LittleEndian.PutUint32(blockCount[:], uint32(len(e.blocks)))
			index.Write(blockCount[:])
			for _, b := range e.blocks {
				var pair [16]byte
				binary.LittleEndian.PutUint64(pair[0:8], b[0])
				binary.LittleEndian.PutUint64(pair[8:16], b[1])
				index.Write(pair[:])
			}
		}
	}

	indexOffset := uint64(payload.Len())
	indexSize := uint64(index.Len())

	var out bytes.Buffer
	out.Write(payload.Bytes())
	out.Write(index.Bytes())

	if legacyFooter {
		var ft [footerSizeV1]byte
		binary.LittleEndian.PutUint32(ft[0:4], pakMagic)
		binary.LittleEndian.PutUint32(ft[4:8], version)
		binary.LittleEndian.PutUint64(ft[8:16], indexOffset)
		binary.LittleEndian.PutUint64(ft[16:24], indexSize)
		out.Write(ft[:])
	} else {
		var ft [footerSizeV2]byte
		if encryptedIndex {
			ft[16] = 1
		}
		binary.LittleEndian.PutUint32(ft[17:21], pakMagic)
		binary.LittleEndian.PutUint32(ft[21:25], version)
		binary.LittleEndian.PutUint64(ft[25:33], indexOffset)
		binary.LittleEndian.PutUint64(ft[33:41], indexSize)
		out.Write(ft[:])
	}

	return out.Bytes()
}

// createPakFile writes an assembled archive fixture into a temp dir.
func createPakFile(t *testing.T, version uint32, mountPoint string, legacyFooter bool, entries []fixtureEntry) string {
	t.Helper()

	data := buildPakBytes(t, version, mountPoint, legacyFooter, false, entries)
	path := filepath.Join(t.TempDir(), "fixture.pak")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// zlibCompress compresses data with zlib for fixture payloads.
func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

// gzipCompress compresses data with gzip framing for fixture payloads.
func gzipCompress(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}
