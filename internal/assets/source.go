package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when no source has the requested asset.
var ErrNotFound = errors.New("asset not found")

// Source opens named assets. Size is -1 when unknown.
type Source interface {
	Open(ctx context.Context, name string) (rc io.ReadCloser, size int64, err error)
	String() string
}

// NewSource returns an HTTP source for http(s) URLs and a directory source
// otherwise.
func NewSource(base string, timeout time.Duration) (Source, error) {
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing asset base %q: %w", base, err)
		}
		return &HTTPSource{Base: u, Client: &http.Client{Timeout: timeout}}, nil
	}
	return DirSource{Root: base}, nil
}

// DirSource reads assets from a local directory.
type DirSource struct {
	Root string
}

func (d DirSource) Open(_ context.Context, name string) (io.ReadCloser, int64, error) {
	p := filepath.Join(d.Root, filepath.FromSlash(path.Clean("/" + name)))
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, 0, err
	}
	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return f, size, nil
}

func (d DirSource) String() string { return d.Root }

// HTTPSource fetches assets relative to a base URL.
type HTTPSource struct {
	Base   *url.URL
	Client *http.Client
}

func (h *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	u := h.Base.JoinPath(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching %s: %w", u, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%s: %w", u, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("fetching %s: %s", u, resp.Status)
	}
	return resp.Body, resp.ContentLength, nil
}

func (h *HTTPSource) String() string { return h.Base.String() }

// progressReader reports bytes read so far against an expected total.
type progressReader struct {
	r      io.Reader
	read   int64
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.report != nil {
			p.report(p.read, p.total)
		}
	}
	return n, err
}
