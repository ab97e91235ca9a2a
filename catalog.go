package mm6pal

import (
	"database/sql"
	"errors"
	"fmt"
	"io/ioutil"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

// ErrUnknownBlock is returned when a named block is not in the catalog
var ErrUnknownBlock = errors.New("unknown palette block")

// Block is a named region of the ROM holding one encoded palette
type Block struct {
	Name   string
	Offset int64
	Size   int64
}

// Catalog records the location of each compressed palette in the ROM
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens or creates the catalog database
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS rom (id INTEGER PRIMARY KEY NOT NULL, crc TEXT NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS palette (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, address INTEGER NOT NULL, size INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

type yamlCatalog struct {
	CRC      string      `yaml:"crc"`
	Palettes []yamlBlock `yaml:"palettes"`
}

type yamlBlock struct {
	Name   string `yaml:"name"`
	Offset int64  `yaml:"offset"`
	Size   int64  `yaml:"size"`
}

func normalizeCRC(crc string) string {
	crc = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(crc), "0x"))
	if len(crc) < 8 {
		crc = strings.Repeat("0", 8-len(crc)) + crc
	}
	return crc
}

// ImportYAML replaces the contents of the catalog with the manifest in file
func (c *Catalog) ImportYAML(file string) error {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}

	var manifest yamlCatalog
	if err := yaml.Unmarshal(b, &manifest); err != nil {
		return err
	}

	for _, p := range manifest.Palettes {
		if p.Name == "" {
			return errors.New("palette with no name")
		}
		// Names become filenames when dumping
		if strings.ContainsAny(p.Name, `/\`) || strings.Contains(p.Name, "..") {
			return fmt.Errorf("palette %q: invalid name", p.Name)
		}
		if p.Offset < 0 || p.Size <= 0 {
			return fmt.Errorf("palette %q: invalid offset or size", p.Name)
		}
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM rom"); err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM palette"); err != nil {
		return err
	}

	if manifest.CRC != "" {
		if _, err = tx.Exec("INSERT INTO rom (crc) VALUES (?)", normalizeCRC(manifest.CRC)); err != nil {
			return err
		}
	}

	for _, p := range manifest.Palettes {
		if _, err = tx.Exec("INSERT INTO palette (name, address, size) VALUES (?, ?, ?)", p.Name, p.Offset, p.Size); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CRC returns the expected checksum of the ROM, or an empty string if
// none was recorded
func (c *Catalog) CRC() (string, error) {
	var crc string
	switch err := c.db.QueryRow("SELECT crc FROM rom LIMIT 1").Scan(&crc); err {
	case sql.ErrNoRows:
		return "", nil
	case nil:
		return crc, nil
	default:
		return "", err
	}
}

// Find returns the named block
func (c *Catalog) Find(name string) (Block, error) {
	b := Block{Name: name}
	switch err := c.db.QueryRow("SELECT address, size FROM palette WHERE name = ?", name).Scan(&b.Offset, &b.Size); err {
	case sql.ErrNoRows:
		return Block{}, fmt.Errorf("%w: %s", ErrUnknownBlock, name)
	case nil:
		return b, nil
	default:
		return Block{}, err
	}
}

// Blocks returns every block in the catalog ordered by offset
func (c *Catalog) Blocks() ([]Block, error) {
	rows, err := c.db.Query("SELECT name, address, size FROM palette ORDER BY address, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.Name, &b.Offset, &b.Size); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	return blocks, rows.Err()
}

// Close closes the underlying database
func (c *Catalog) Close() error {
	return c.db.Close()
}
