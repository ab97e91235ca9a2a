package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/mm6pal"
	"github.com/urfave/cli/v2"
)

const defaultDB = "mm6pal.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// newTool returns a Tool, opening the catalog if it's needed. The returned
// function must be called when finished with the Tool.
func newTool(c *cli.Context, withCatalog bool) (*mm6pal.Tool, func(), error) {
	if !withCatalog {
		return mm6pal.New(nil, newLogger(c)), func() {}, nil
	}

	catalog, err := mm6pal.NewCatalog(c.String("db"))
	if err != nil {
		return nil, nil, err
	}

	return mm6pal.New(catalog, newLogger(c)), func() { catalog.Close() }, nil
}

func resolve(m *mm6pal.Tool, j *job) error {
	if j.name == "" {
		return nil
	}
	b, err := m.Lookup(j.name)
	if err != nil {
		return err
	}
	j.offset, j.size = b.Offset, b.Size
	return nil
}

func argsFrom(c *cli.Context) blockArgs {
	return blockArgs{
		rom:    c.String("rom"),
		file:   c.String("file"),
		name:   c.String("name"),
		offset: c.String("offset"),
		size:   c.String("size"),
	}
}

func usageError(c *cli.Context, err error) error {
	fmt.Fprintf(c.App.ErrWriter, "Error: %s\n\n", err)
	cli.ShowCommandHelp(c, c.Command.Name)
	return cli.Exit("", 1)
}

func extract(c *cli.Context) error {
	j, err := validateExtract(argsFrom(c))
	if err != nil {
		return usageError(c, err)
	}

	m, done, err := newTool(c, j.name != "")
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer done()

	if err := resolve(m, &j); err != nil {
		return cli.Exit(err, 1)
	}

	n, err := m.Extract(j.rom, j.file, j.offset, j.size)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}
	fmt.Fprintf(c.App.Writer, "Extracted %d bytes from '%s' to '%s'.\n", n, j.rom, j.file)

	return nil
}

func insert(c *cli.Context) error {
	j, err := validateInsert(argsFrom(c), c.Bool("fill"), c.String("fill-byte"))
	if err != nil {
		return usageError(c, err)
	}

	m, done, err := newTool(c, j.name != "")
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer done()

	if err := resolve(m, &j.job); err != nil {
		return cli.Exit(err, 1)
	}

	free, err := m.Insert(j.rom, j.file, j.offset, j.size, j.fill, j.fillByte)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}

	fmt.Fprintf(c.App.Writer, "Inserted '%s' to '%s'.\n", j.file, j.rom)
	if j.fill {
		fmt.Fprintf(c.App.Writer, "Free space: %d bytes filled with 0x%02X.\n", free, j.fillByte)
	} else {
		fmt.Fprintf(c.App.Writer, "Free space: %d bytes.\n", free)
	}

	return nil
}

func blockFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "rom",
			Aliases: []string{"r"},
			Usage:   "path to the ROM `FILE`",
		},
		&cli.StringFlag{
			Name:    "offset",
			Aliases: []string{"o"},
			Usage:   "start offset in `HEX`",
		},
		&cli.StringFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "block size in `HEX`",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "use the offset and size of the catalogued `BLOCK`",
		},
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "mm6pal"
	app.Usage = "Mega Man 6 palette decompressor"
	app.Version = "0.1.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"MM6PAL_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "extract",
			Usage: "Extract a palette from ROM",
			Flags: append(blockFlags(),
				&cli.StringFlag{
					Name:    "file",
					Aliases: []string{"f"},
					Usage:   "output `FILE`",
				},
			),
			Action: extract,
		},
		{
			Name:        "insert",
			Usage:       "Insert a palette to ROM",
			Description: "The size defaults to the size of the ROM file if not given.",
			Flags: append(blockFlags(),
				&cli.StringFlag{
					Name:    "file",
					Aliases: []string{"f"},
					Usage:   "input `FILE`",
				},
				&cli.BoolFlag{
					Name:  "fill",
					Usage: "fill free space",
				},
				&cli.StringFlag{
					Name:  "fill-byte",
					Value: "FF",
					Usage: "fill free space with `HEX`",
				},
			),
			Action: insert,
		},
		{
			Name:      "import",
			Usage:     "Import a YAML catalog of palette blocks",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
				}

				m, done, err := newTool(c, true)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer done()

				if err := m.Catalog().ImportYAML(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "dump",
			Usage:     "Extract every catalogued palette from ROM",
			ArgsUsage: "ROM DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
				}

				m, done, err := newTool(c, true)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer done()

				if err := m.Dump(c.Args().Get(0), c.Args().Get(1)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
