// Package download implements the Fetcher port over HTTP.
package download

import (
	"context"
	// Register the hash functions go-digest resolves by algorithm name.
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"io"
	"maps"
	"net/http"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/renameio/v2"
	"github.com/opencontainers/go-digest"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/stage/internal/core/ports"
	"go.trai.ch/zerr"
)

const httpClientTimeout = 10 * time.Minute

// Fetcher implements ports.Fetcher using net/http.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher with a default HTTP client.
func NewFetcher() *Fetcher {
	return NewFetcherWithClient(&http.Client{Timeout: httpClientTimeout})
}

// NewFetcherWithClient creates a Fetcher that issues requests through client.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{httpClient: client}
}

// Fetch downloads req.URL to destDir/req.FileName.
// The body is streamed into a pending file next to the destination while its length
// and declared digests are computed; the pending file only replaces the destination
// once every check has passed.
func (f *Fetcher) Fetch(ctx context.Context, req domain.FetchRequest, destDir string) error {
	expected, err := expectedDigests(req.Checksums)
	if err != nil {
		return zerr.With(err, "url", req.URL)
	}

	dest := filepath.Join(destDir, req.FileName)
	if v, ok := ports.VertexFromContext(ctx); ok {
		_, _ = fmt.Fprintf(v.Stdout(), "GET %s\n", req.URL)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, http.NoBody)
	if err != nil {
		return fetchFailed(err, "url", req.URL)
	}

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return fetchFailed(err, "url", req.URL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		statusErr := zerr.With(domain.ErrFetchFailed, "status_code", resp.StatusCode)
		return zerr.With(statusErr, "url", req.URL)
	}

	pending, err := renameio.NewPendingFile(dest,
		renameio.WithTempDir(destDir),
		renameio.WithPermissions(domain.FilePerm),
	)
	if err != nil {
		return fetchFailed(err, "path", dest)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	digesters := make(map[digest.Algorithm]digest.Digester, len(expected))
	writers := []io.Writer{pending}
	for alg := range expected {
		d := alg.Digester()
		digesters[alg] = d
		writers = append(writers, d.Hash())
	}

	n, err := io.Copy(io.MultiWriter(writers...), resp.Body)
	if err != nil {
		return fetchFailed(err, "url", req.URL)
	}

	if req.Length > 0 && n != req.Length {
		sizeErr := zerr.Wrap(domain.ErrSizeMismatch, req.FileName)
		sizeErr = zerr.With(sizeErr, "expected", req.Length)
		return zerr.With(sizeErr, "actual", n)
	}

	for _, alg := range slices.Sorted(maps.Keys(expected)) {
		want := expected[alg]
		if got := digesters[alg].Digest(); got != want {
			digestErr := zerr.Wrap(domain.ErrDigestMismatch, req.FileName)
			digestErr = zerr.With(digestErr, "expected", want.String())
			return zerr.With(digestErr, "actual", got.String())
		}
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fetchFailed(err, "path", dest)
	}
	return nil
}

// expectedDigests validates the declared checksums before any byte is downloaded.
func expectedDigests(checksums map[string]string) (map[digest.Algorithm]digest.Digest, error) {
	out := make(map[digest.Algorithm]digest.Digest, len(checksums))
	for name, encoded := range checksums {
		alg := digest.Algorithm(name)
		d := digest.NewDigestFromEncoded(alg, encoded)
		if err := d.Validate(); err != nil {
			unsupported := zerr.With(domain.ErrUnsupportedDigest, "algorithm", name)
			return nil, zerr.With(unsupported, "value", encoded)
		}
		out[alg] = d
	}
	return out, nil
}

// fetchFailed classifies err as a transport failure while keeping it in the chain.
func fetchFailed(err error, key, value string) error {
	return zerr.With(fmt.Errorf("%w: %w", domain.ErrFetchFailed, err), key, value)
}
