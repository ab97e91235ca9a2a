package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errNoOffset  = errors.New("an offset or block name is required")
	errNoSize    = errors.New("a size or block name is required")
	errNameBlock = errors.New("a block name cannot be combined with an offset or size")
)

// blockArgs holds the raw command line arguments common to extract and
// insert
type blockArgs struct {
	rom    string
	file   string
	name   string
	offset string
	size   string
}

// job is a validated extract or insert request. If name is set, offset and
// size are resolved from the catalog. A negative size means none was given.
type job struct {
	rom    string
	file   string
	name   string
	offset int64
	size   int64
}

type insertJob struct {
	job
	fill     bool
	fillByte byte
}

func parseHex(flag, s string) (int64, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid hex value %q for --%s", s, flag)
	}
	return v, nil
}

func (a blockArgs) validate(needSize bool) (job, error) {
	j := job{
		rom:  a.rom,
		file: a.file,
		name: a.name,
	}

	if a.rom == "" {
		return job{}, errors.New("a ROM file is required")
	}
	if a.file == "" {
		return job{}, errors.New("a file is required")
	}

	if a.name != "" {
		if a.offset != "" || a.size != "" {
			return job{}, errNameBlock
		}
		return j, nil
	}

	if a.offset == "" {
		return job{}, errNoOffset
	}

	var err error
	if j.offset, err = parseHex("offset", a.offset); err != nil {
		return job{}, err
	}

	switch {
	case a.size != "":
		if j.size, err = parseHex("size", a.size); err != nil {
			return job{}, err
		}
	case needSize:
		return job{}, errNoSize
	default:
		j.size = -1
	}

	return j, nil
}

func validateExtract(a blockArgs) (job, error) {
	return a.validate(true)
}

func validateInsert(a blockArgs, fill bool, fillByte string) (insertJob, error) {
	j, err := a.validate(false)
	if err != nil {
		return insertJob{}, err
	}

	ij := insertJob{job: j, fill: fill}
	if fill {
		v, err := parseHex("fill-byte", fillByte)
		if err != nil {
			return insertJob{}, err
		}
		if v > 0xff {
			return insertJob{}, fmt.Errorf("fill byte %#x is larger than a byte", v)
		}
		ij.fillByte = byte(v)
	}

	return ij, nil
}
