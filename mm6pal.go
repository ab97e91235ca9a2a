/*
Package mm6pal is a library for extracting and inserting the compressed
palettes stored in a Mega Man 6 ROM image.
*/
package mm6pal

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/bodgit/mm6pal/palette"
	"github.com/bodgit/mm6pal/rom"
)

var (
	// ErrROMNotFound is returned when the ROM image does not exist
	ErrROMNotFound = errors.New("ROM file not found")
	// ErrInputNotFound is returned when the file to insert does not exist
	ErrInputNotFound = errors.New("input file not found")
	// ErrNoCatalog is returned when a catalog operation is attempted
	// without one
	ErrNoCatalog = errors.New("no catalog")
)

// Tool extracts and inserts palettes. The catalog is optional and only
// required for operations that refer to blocks by name.
type Tool struct {
	catalog *Catalog
	logger  *log.Logger
}

// New returns a Tool using the given catalog, which may be nil, and logger.
func New(catalog *Catalog, logger *log.Logger) *Tool {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Tool{
		catalog: catalog,
		logger:  logger,
	}
}

// Catalog returns the catalog, which may be nil
func (t *Tool) Catalog() *Catalog {
	return t.catalog
}

// Lookup returns the named block from the catalog
func (t *Tool) Lookup(name string) (Block, error) {
	if t.catalog == nil {
		return Block{}, ErrNoCatalog
	}
	return t.catalog.Find(name)
}

func (t *Tool) decode(romFile string, offset, size int64) ([]byte, error) {
	data, err := rom.Read(romFile, offset, size)
	if err != nil {
		return nil, err
	}

	if x, ok := palette.StartCursor(data); !ok && len(data) > 0 {
		t.logger.Printf("Start cursor %#02x at offset %#x is outside the palette\n", x, offset)
	}

	return palette.Decode(data, true), nil
}

// Extract decodes the palette stored in size bytes at offset in romFile and
// writes it to outFile. The number of bytes written is returned.
func (t *Tool) Extract(romFile, outFile string, offset, size int64) (int, error) {
	if !rom.Exists(romFile) {
		return 0, fmt.Errorf("%w: %s", ErrROMNotFound, romFile)
	}

	pal, err := t.decode(romFile, offset, size)
	if err != nil {
		return 0, err
	}

	if err := rom.WriteFile(outFile, pal); err != nil {
		return 0, err
	}
	t.logger.Printf("Extracted %d bytes from \"%s\" to \"%s\"\n", len(pal), romFile, outFile)

	return len(pal), nil
}

// Insert encodes the palette in inFile and writes it at offset in romFile.
// The encoded palette must fit within size bytes, if size is negative the
// size of romFile is used. If fill is set any remaining space is padded
// with fillByte. The number of free bytes is returned.
func (t *Tool) Insert(romFile, inFile string, offset, size int64, fill bool, fillByte byte) (int64, error) {
	if !rom.Exists(romFile) {
		return 0, fmt.Errorf("%w: %s", ErrROMNotFound, romFile)
	}
	if !rom.Exists(inFile) {
		return 0, fmt.Errorf("%w: %s", ErrInputNotFound, inFile)
	}

	if size < 0 {
		info, err := os.Stat(romFile)
		if err != nil {
			return 0, err
		}
		size = info.Size()
	}

	pal, err := rom.ReadFile(inFile)
	if err != nil {
		return 0, err
	}
	if len(pal) != palette.Size {
		t.logger.Printf("\"%s\" is %d bytes, expected %d\n", inFile, len(pal), palette.Size)
	}

	free, err := rom.Write(romFile, palette.Encode(pal), offset, size, fill, fillByte)
	if err != nil {
		return 0, fmt.Errorf("file \"%s\": %w", inFile, err)
	}
	t.logger.Printf("Inserted \"%s\" to \"%s\" at %#x\n", inFile, romFile, offset)

	return free, nil
}
