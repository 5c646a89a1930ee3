// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"encoding/binary"
	"fmt"
	"io"
)

// footer carries archive-level metadata decoded from the file trailer.
type footer struct {
	version     uint32
	indexOffset uint64
	indexSize   uint64
	encrypted   bool
}

// parseFooter locates and decodes the PAK footer at the end of the source.
// The encryption-aware layout is tried first, then the legacy layout; the two
// variants are distinguished only by where the magic validates.
func parseFooter(ra io.ReaderAt, size int64) (footer, error) {
	if size < footerSizeV2 {
		return footer{}, fmt.Errorf("%w: %d bytes", ErrTruncated, size)
	}

	tail := make([]byte, footerSizeV2)
	if _, err := ra.ReadAt(tail, size-footerSizeV2); err != nil {
		return footer{}, fmt.Errorf("read footer: %w", err)
	}

	ft, ok := decodeFooterWithGUID(tail)
	if !ok {
		// Legacy layout has no encryption GUID or flag, so it sits 16+1
		// bytes closer to the end of file.
		ft, ok = decodeFooterLegacy(tail[footerSizeV2-footerSizeV1:])
	}
	if !ok {
		return footer{}, ErrBadMagic
	}

	if ft.indexOffset >= uint64(size) || ft.indexSize == 0 {
		return footer{}, fmt.Errorf("%w: offset=%d size=%d", ErrInvalidIndexRegion, ft.indexOffset, ft.indexSize)
	}

	return ft, nil
}

// decodeFooterWithGUID decodes the 44-byte encryption-aware footer layout:
// 16-byte encryption GUID (ignored), encrypted-index flag, magic, version,
// index offset, index size.
func decodeFooterWithGUID(buf []byte) (footer, bool) {
	if binary.LittleEndian.Uint32(buf[17:21]) != pakMagic {
		return footer{}, false
	}

	return footer{
		version:     binary.LittleEndian.Uint32(buf[21:25]),
		indexOffset: binary.LittleEndian.Uint64(buf[25:33]),
		indexSize:   binary.LittleEndian.Uint64(buf[33:41]),
		encrypted:   buf[16] != 0,
	}, true
}

// decodeFooterLegacy decodes the 28-byte pre-encryption footer layout:
// magic, version, index offset, index size. The layout predates per-archive
// index encryption, so encrypted is always false.
func decodeFooterLegacy(buf []byte) (footer, bool) {
	if binary.LittleEndian.Uint32(buf[0:4]) != pakMagic {
		return footer{}, false
	}

	return footer{
		version:     binary.LittleEndian.Uint32(buf[4:8]),
		indexOffset: binary.LittleEndian.Uint64(buf[8:16]),
		indexSize:   binary.LittleEndian.Uint64(buf[16:24]),
	}, true
}
