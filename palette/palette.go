/*
Package palette implements the compressed palette format used by Mega Man 6
on the NES.

A decoded palette is exactly 32 bytes, one 6-bit color index per slot. The
encoded stream starts with a single byte giving the first slot to write,
followed by one token per slot. A token with bit 6 set stands for two slots;
the first holds the transparent index 0x0F and the second holds the low six
bits of the token.
*/
package palette

const (
	// Size is the number of slots in a decoded palette
	Size = 32

	// Transparent is the color index that can be folded into the
	// following token
	Transparent = 0x0f

	escapeBit = 0x40
	valueMask = 0x3f
)

// StartCursor returns the slot an encoded stream starts writing at and
// whether that slot lies within the palette.
func StartCursor(data []byte) (int, bool) {
	if len(data) == 0 {
		return 0, false
	}
	return int(data[0]), int(data[0]) < Size
}

// Decode expands an encoded stream into a palette. If escape is false,
// bit 6 of each token is ignored. Empty input returns an empty slice,
// otherwise the result is always Size bytes with any unwritten slots left
// at zero. Input past the last slot is ignored.
func Decode(data []byte, escape bool) []byte {
	if len(data) == 0 {
		return []byte{}
	}

	pal := make([]byte, Size)

	x := int(data[0])
	if x >= Size {
		return pal
	}

	for _, v := range data[1:] {
		// One token, two writes
		if escape && v&escapeBit != 0 {
			pal[x] = Transparent
			if x++; x == Size {
				break
			}
		}

		pal[x] = v & valueMask
		if x++; x == Size {
			break
		}
	}

	return pal
}

// Encode compresses a palette into an encoded stream that starts writing
// at slot zero. Any transparent entry that has a successor is merged with
// it into a single token.
func Encode(pal []byte) []byte {
	out := make([]byte, 1, len(pal)+1)

	for i := 0; i < len(pal); i++ {
		v := pal[i] & valueMask
		if v == Transparent && i+1 < len(pal) {
			i++
			v = escapeBit | pal[i]&valueMask
		}
		out = append(out, v)
	}

	return out
}
