package mm6pal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bodgit/mm6pal/rom"
)

const (
	// Extension is appended to the block name for each dumped palette
	Extension = ".pal"

	dumpWorkers = 4
)

// ErrChecksum is returned when the ROM does not match the catalog
var ErrChecksum = errors.New("ROM checksum mismatch")

func (t *Tool) findBlocks(ctx context.Context, blocks []Block) (<-chan Block, <-chan error, error) {
	out := make(chan Block)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, b := range blocks {
			select {
			case out <- b:
			case <-ctx.Done():
				errc <- errors.New("dump cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

func (t *Tool) blockWorker(ctx context.Context, romFile, dir string, in <-chan Block) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for b := range in {
			pal, err := t.decode(romFile, b.Offset, b.Size)
			if err != nil {
				errc <- fmt.Errorf("%s: %w", b.Name, err)
				return
			}

			file := filepath.Join(dir, b.Name+Extension)
			if err := rom.WriteFile(file, pal); err != nil {
				errc <- err
				return
			}
			t.logger.Printf("Extracted \"%s\" from %#x to \"%s\"\n", b.Name, b.Offset, file)
		}
	}()
	return errc, nil
}

func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			// Stop the producer and let the workers drain
			cancel()
			for range errc {
			}
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (t *Tool) verify(romFile string) error {
	want, err := t.catalog.CRC()
	if err != nil {
		return err
	}
	if want == "" {
		return nil
	}

	got, err := rom.Checksum(romFile)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: got %s, expected %s", ErrChecksum, got, want)
	}

	return nil
}

// Dump decodes every palette in the catalog from romFile and writes each
// one to dir, which is created if necessary. The ROM checksum is verified
// first if the catalog records one.
func (t *Tool) Dump(romFile, dir string) error {
	if t.catalog == nil {
		return ErrNoCatalog
	}
	if !rom.Exists(romFile) {
		return fmt.Errorf("%w: %s", ErrROMNotFound, romFile)
	}

	if err := t.verify(romFile); err != nil {
		return err
	}

	blocks, err := t.catalog.Blocks()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	in, errc, err := t.findBlocks(ctx, blocks)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < dumpWorkers; i++ {
		errc, err := t.blockWorker(ctx, romFile, dir, in)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(cancelFunc, errcList...)
}
