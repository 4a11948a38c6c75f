package index

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	xz "github.com/smira/go-xz"
)

// List of extensions + corresponding decompressors
var compressionMethods = []struct {
	extension     string
	decompression func(io.Reader) (io.ReadCloser, error)
}{
	{
		extension: ".gz",
		decompression: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
	},
	{
		extension: ".zst",
		decompression: func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
	},
	{
		extension: ".xz",
		decompression: func(r io.Reader) (io.ReadCloser, error) {
			return xz.NewReader(r)
		},
	},
	{
		extension: ".bz2",
		decompression: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(bzip2.NewReader(r)), nil
		},
	},
}

// decompress wraps r according to the extension of name; unknown extensions
// are read as is.
func decompress(name string, r io.Reader) (io.ReadCloser, error) {
	for _, method := range compressionMethods {
		if strings.HasSuffix(name, method.extension) {
			return method.decompression(r)
		}
	}
	return io.NopCloser(r), nil
}

// readStanzas opens path, decompressing it if needed, and calls handler for
// every stanza.
func readStanzas(path string, handler func(Stanza) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	r, err := decompress(path, f)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to decompress %s", path)
	}
	defer func() { _ = r.Close() }()

	count := 0
	sr := NewStanzaReader(r)
	for {
		stanza, err := sr.Next()
		if err != nil {
			return count, errors.Wrapf(err, "unable to read %s", path)
		}
		if stanza == nil {
			return count, nil
		}
		count++
		if err := handler(stanza); err != nil {
			return count, err
		}
	}
}

// readDebControl extracts the control stanza from a .deb archive: the ar
// member control.tar[.gz|.xz|.zst] holds a "control" file.
func readDebControl(r io.Reader) (Stanza, error) {
	arR := ar.NewReader(r)
	for {
		header, err := arR.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(header.Name, "control.tar") {
			continue
		}

		member := make([]byte, header.Size)
		if _, err := io.ReadFull(arR, member); err != nil {
			return nil, err
		}
		tarData, err := decompress(strings.TrimRight(strings.TrimSpace(header.Name), "/"), bytes.NewReader(member))
		if err != nil {
			return nil, err
		}
		defer func() { _ = tarData.Close() }()

		tr := tar.NewReader(tarData)
		for {
			th, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			if filepath.Base(th.Name) == "control" {
				return NewStanzaReader(tr).Next()
			}
		}
	}
	return nil, errors.New("control file not found")
}
