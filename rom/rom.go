/*
Package rom reads and patches fixed blocks of bytes inside a ROM image.
*/
package rom

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/ioutil"
	"os"
)

const inesHeader = 16

var inesMagic = []byte{'N', 'E', 'S', 0x1a}

// SizeError is returned when data does not fit in the destination block
type SizeError struct {
	Excess int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%d bytes exceed block size", e.Excess)
}

// Exists reports whether file exists
func Exists(file string) bool {
	_, err := os.Stat(file)
	return err == nil
}

// Read returns up to size bytes from file starting at offset. Fewer bytes
// are returned if the end of the file is reached first.
func Read(file string, offset, size int64) ([]byte, error) {
	if offset < 0 || size < 0 {
		return nil, errors.New("negative offset or size")
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if offset >= info.Size() {
		return []byte{}, nil
	}
	if remaining := info.Size() - offset; size > remaining {
		size = remaining
	}

	b := make([]byte, size)
	n, err := f.ReadAt(b, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}

	return b[:n], nil
}

// Write writes data to file at offset, which must fit within blockSize
// bytes. If fill is set, the rest of the block is padded with fillByte.
// The number of free bytes left in the block is returned. Nothing is
// written if the data is too large.
func Write(file string, data []byte, offset, blockSize int64, fill bool, fillByte byte) (int64, error) {
	if offset < 0 {
		return 0, errors.New("negative offset")
	}

	if int64(len(data)) > blockSize {
		return 0, &SizeError{Excess: int64(len(data)) - blockSize}
	}
	free := blockSize - int64(len(data))

	if fill {
		data = append(data[:len(data):len(data)], bytes.Repeat([]byte{fillByte}, int(free))...)
	}

	f, err := os.OpenFile(file, os.O_RDWR, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err = f.WriteAt(data, offset); err != nil {
		return 0, err
	}

	return free, f.Close()
}

// ReadFile returns the contents of a standalone file
func ReadFile(file string) ([]byte, error) {
	return ioutil.ReadFile(file)
}

// WriteFile creates or replaces a standalone file with data
func WriteFile(file string, data []byte) error {
	return ioutil.WriteFile(file, data, 0644)
}

// Checksum computes the CRC-32 of a ROM image, skipping any iNES header,
// formatted as eight uppercase hex digits.
func Checksum(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var header [inesHeader]byte
	n, err := io.ReadFull(f, header[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	h := crc32.NewIEEE()
	if n < len(inesMagic) || !bytes.Equal(header[:len(inesMagic)], inesMagic) {
		h.Write(header[:n])
	}

	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil)), nil
}
