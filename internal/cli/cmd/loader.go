package cmd

// loader.go reads the kernel and disk images from the filesystem and constructs a Hart from
// them, turning external bytes into initial machine state. This is the CLI's job, not the core's:
// vm.New only ever accepts already-read []byte, so this file's job is file I/O and error
// wrapping, not image parsing.

import (
	"fmt"
	"io"
	"os"

	"rv64emu/internal/log"
	"rv64emu/internal/vm"
)

// ErrLoader wraps host-side I/O failures while reading kernel or disk images.
var ErrLoader = fmt.Errorf("loader error")

// imageLoader reads image files and constructs a Hart ready to run.
type imageLoader struct {
	log *log.Logger
}

// newImageLoader creates an image loader logging through logger (or the package default).
func newImageLoader(logger *log.Logger) *imageLoader {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &imageLoader{log: logger}
}

// Load reads kernelPath (required) and diskPath (optional, may be "") and constructs a Hart whose
// console is wired to in/out.
func (l *imageLoader) Load(kernelPath, diskPath string, in io.Reader, out io.Writer) (*vm.Hart, error) {
	kernel, err := os.ReadFile(kernelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: kernel image: %w", ErrLoader, err)
	}

	var disk []byte

	if diskPath != "" {
		disk, err = os.ReadFile(diskPath)
		if err != nil {
			return nil, fmt.Errorf("%w: disk image: %w", ErrLoader, err)
		}
	}

	l.log.Info("loaded images", log.Any("kernel_bytes", len(kernel)), log.Any("disk_bytes", len(disk)))

	return vm.New(kernel, disk, in, out, l.log), nil
}
