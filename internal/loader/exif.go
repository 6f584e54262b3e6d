package loader

import (
	"encoding/binary"
	"errors"
)

// exifOrientation extracts the EXIF Orientation tag (0x0112) from a JPEG's
// APP1 segment. It returns 1 (no-op) if no EXIF data, no Orientation tag,
// or malformed data is found — decode failures here are not treated as
// photo decode failures, they just skip the orientation fixup.
//
// No EXIF-parsing library appears anywhere in the retrieval pack, so this
// is a minimal, purpose-built reader rather than a full EXIF/TIFF decoder;
// it only walks enough of the IFD0 tag table to find Orientation.
func exifOrientation(data []byte) int {
	off, ok := findEXIFSegment(data)
	if !ok {
		return 1
	}
	tiff := data[off:]
	orientation, err := readOrientationFromTIFF(tiff)
	if err != nil {
		return 1
	}
	return orientation
}

var errMalformedEXIF = errors.New("loader: malformed exif")

// findEXIFSegment locates the start of the TIFF header within a JPEG's
// APP1/Exif segment.
func findEXIFSegment(data []byte) (int, bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, false
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return 0, false
		}
		marker := data[i+1]
		if marker == 0xD8 || marker == 0xD9 {
			i += 2
			continue
		}
		if i+4 > len(data) {
			return 0, false
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		segStart := i + 4
		if marker == 0xE1 && segStart+6 <= len(data) && string(data[segStart:segStart+6]) == "Exif\x00\x00" {
			return segStart + 6, true
		}
		if marker == 0xDA { // start of scan: no more markers to scan
			return 0, false
		}
		i = segStart + segLen - 2
	}
	return 0, false
}

func readOrientationFromTIFF(tiff []byte) (int, error) {
	if len(tiff) < 8 {
		return 0, errMalformedEXIF
	}
	var bo binary.ByteOrder
	switch string(tiff[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return 0, errMalformedEXIF
	}
	ifd0Offset := bo.Uint32(tiff[4:8])
	if int(ifd0Offset)+2 > len(tiff) {
		return 0, errMalformedEXIF
	}
	numEntries := int(bo.Uint16(tiff[ifd0Offset : ifd0Offset+2]))
	entriesStart := int(ifd0Offset) + 2
	const entrySize = 12
	for i := 0; i < numEntries; i++ {
		entryOff := entriesStart + i*entrySize
		if entryOff+entrySize > len(tiff) {
			return 0, errMalformedEXIF
		}
		tag := bo.Uint16(tiff[entryOff : entryOff+2])
		if tag == 0x0112 {
			valueOff := entryOff + 8
			v := bo.Uint16(tiff[valueOff : valueOff+2])
			if v < 1 || v > 8 {
				return 1, nil
			}
			return int(v), nil
		}
	}
	return 1, nil
}
