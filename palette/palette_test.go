package palette

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tables := []struct {
		name   string
		data   []byte
		escape bool
		want   []byte
	}{
		{
			"empty",
			[]byte{},
			true,
			[]byte{},
		},
		{
			"cursor only",
			[]byte{0x00},
			true,
			make([]byte, Size),
		},
		{
			"literal then escape",
			[]byte{0x00, 0x0f, 0x45},
			true,
			append([]byte{0x0f, 0x0f, 0x05}, make([]byte, 29)...),
		},
		{
			"escape disabled",
			[]byte{0x00, 0x0f, 0x45},
			false,
			append([]byte{0x0f, 0x05}, make([]byte, 30)...),
		},
		{
			"start cursor",
			[]byte{0x1e, 0x01, 0x02},
			true,
			append(make([]byte, 30), 0x01, 0x02),
		},
		{
			"escape on last slot",
			[]byte{0x1f, 0x45, 0x01},
			true,
			append(make([]byte, 31), 0x0f),
		},
		{
			"start cursor out of range",
			[]byte{0x20, 0x01, 0x02},
			true,
			make([]byte, Size),
		},
		{
			"high bits masked",
			[]byte{0x00, 0xbf},
			false,
			append([]byte{0x3f}, make([]byte, 31)...),
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.want, Decode(table.data, table.escape))
		})
	}
}

func TestDecodeSaturation(t *testing.T) {
	data := append([]byte{0x00}, bytes.Repeat([]byte{0x41}, 40)...)

	got := Decode(data, true)
	assert.Len(t, got, Size)
	for i := 0; i < Size; i += 2 {
		assert.Equal(t, byte(Transparent), got[i])
		assert.Equal(t, byte(0x01), got[i+1])
	}
}

func TestDecodeLength(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		data := make([]byte, 1+r.Intn(64))
		r.Read(data)
		assert.Len(t, Decode(data, true), Size)
		assert.Len(t, Decode(data, false), Size)
	}
}

func TestEncode(t *testing.T) {
	tables := []struct {
		name string
		pal  []byte
		want []byte
	}{
		{
			"empty",
			[]byte{},
			[]byte{0x00},
		},
		{
			"literals",
			bytes.Repeat([]byte{0x01}, Size),
			append([]byte{0x00}, bytes.Repeat([]byte{0x01}, Size)...),
		},
		{
			"transparent pair",
			append([]byte{0x0f, 0x05}, make([]byte, 30)...),
			append([]byte{0x00, 0x45}, make([]byte, 30)...),
		},
		{
			"trailing transparent",
			[]byte{0x01, 0x0f},
			[]byte{0x00, 0x01, 0x0f},
		},
		{
			"consecutive transparent",
			[]byte{0x0f, 0x0f, 0x0f},
			[]byte{0x00, 0x4f, 0x0f},
		},
		{
			"high bits masked",
			[]byte{0xcf, 0xff},
			[]byte{0x00, 0x7f},
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.want, Encode(table.pal))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	for i := 0; i < 500; i++ {
		pal := make([]byte, Size)
		for j := range pal {
			// Bias towards the transparent index so pairs get merged
			if r.Intn(3) == 0 {
				pal[j] = Transparent
			} else {
				pal[j] = byte(r.Intn(valueMask + 1))
			}
		}

		b := Encode(pal)
		assert.LessOrEqual(t, len(b), Size+1)
		assert.Equal(t, pal, Decode(b, true))
	}
}

func TestStartCursor(t *testing.T) {
	x, ok := StartCursor(nil)
	assert.False(t, ok)
	assert.Equal(t, 0, x)

	x, ok = StartCursor([]byte{0x1f})
	assert.True(t, ok)
	assert.Equal(t, 31, x)

	x, ok = StartCursor([]byte{0x20})
	assert.False(t, ok)
	assert.Equal(t, 32, x)
}
