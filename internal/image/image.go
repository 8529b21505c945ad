// Package image loads a kernel binary and a disk image from the
// filesystem and hands both to the emulator core as plain byte slices
// (§6 of the construction contract: "two immutable byte arrays").
//
// Generalized from the teacher's object-code loader (which copies a
// parsed LC-3 object format word-by-word into memory) to the flatter
// contract this core needs: the kernel is an ELF/raw binary copied
// verbatim, and the disk image is opaque bytes VirtioBlk treats as a
// sector-addressed backing store. internal/emu never touches the
// filesystem; this package is the only place that does.
package image

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/riscv32emu/virt/internal/log"
)

// ErrImageLoader is the sentinel wrapped by every error this package
// returns.
var ErrImageLoader = errors.New("image loader")

// Loader reads a kernel image and a disk image from disk.
type Loader struct {
	log *log.Logger
}

// NewLoader creates an image loader using the default logger.
func NewLoader() *Loader {
	return &Loader{log: log.DefaultLogger()}
}

// LoadKernel reads the entire kernel binary at path.
func (l *Loader) LoadKernel(path string) ([]byte, error) {
	b, err := l.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: kernel: %w", ErrImageLoader, err)
	}

	l.log.Info("loaded kernel image", log.String("PATH", path), log.Any("BYTES", len(b)))

	return b, nil
}

// LoadDisk reads the entire disk image at path. An empty path is
// valid: it returns a zero-length image, for kernels that never issue
// virtio-blk requests.
func (l *Loader) LoadDisk(path string) ([]byte, error) {
	if path == "" {
		return []byte{}, nil
	}

	b, err := l.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: disk: %w", ErrImageLoader, err)
	}

	l.log.Info("loaded disk image", log.String("PATH", path), log.Any("BYTES", len(b)))

	return b, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	if len(b) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	return b, nil
}
