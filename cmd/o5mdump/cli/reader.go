// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// ErrUnknownCompressionType is returned when a file extension isn't one
// WrapInputFile knows how to decompress; the file is still readable as
// raw o5m/o5c.
var ErrUnknownCompressionType = errors.New("cli: unknown compression type")

// WrapInputFile wraps f with a progress bar tracking bytes read against
// its size, and transparently decompresses it based on its extension.
// Stdin is returned unwrapped: its size is unknown, and it is assumed
// to already carry a raw o5m/o5c stream.
func WrapInputFile(f *os.File) (io.ReadCloser, error) {
	if f == os.Stdin {
		return os.Stdin, nil
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cli: stat input: %w", err)
	}

	bar := pb.New(int(fi.Size())).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()

	tracked := bar.NewProxyReader(f)

	decompressed, err := decompress(f.Name(), tracked)
	if err != nil && !errors.Is(err, ErrUnknownCompressionType) {
		return nil, err
	}

	return &progressBar{r: decompressed, bar: bar, file: f}, nil
}

// decompress picks a decompressor by filename extension. An unknown
// extension is not fatal: r is returned unwrapped, on the assumption
// that the file is raw o5m/o5c, alongside ErrUnknownCompressionType so
// the caller can tell the two cases apart if it cares to.
func decompress(name string, r io.Reader) (io.Reader, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("cli: gzip: %w", err)
		}

		return gr, nil
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("cli: zstd: %w", err)
		}

		return zr.IOReadCloser(), nil
	case strings.HasSuffix(name, ".lz4"):
		return lz4.NewReader(r), nil
	case strings.HasSuffix(name, ".xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("cli: xz: %w", err)
		}

		return xr, nil
	default:
		return r, ErrUnknownCompressionType
	}
}

// progressBar is a ReadCloser that tracks bytes read from the underlying
// file against a pb.ProgressBar, clearing the terminal status line on
// Close.
type progressBar struct {
	r    io.Reader
	bar  *pb.ProgressBar
	file *os.File
}

func (p *progressBar) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *progressBar) Close() error {
	p.bar.Output = nil
	p.bar.NotPrint = true
	p.bar.Finish()

	fmt.Fprint(os.Stderr, "\033[2K\r")

	return p.file.Close()
}
