package gamemaster

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// maxSnapshotBytes bounds the response body read by Fetch.
const maxSnapshotBytes = 256 << 20

// FetchResult describes a snapshot written by Fetch.
type FetchResult struct {
	Path    string
	Digest  string
	Records int
	Bytes   int
}

// Fetcher downloads the remote snapshot and replaces the local copy atomically.
type Fetcher struct {
	client *http.Client
	url    string
	dest   string
	logger *zap.Logger
}

// NewFetcher creates a Fetcher writing the snapshot at url to dest.
//
// Precondition: client and logger must be non-nil.
func NewFetcher(client *http.Client, url, dest string, logger *zap.Logger) *Fetcher {
	return &Fetcher{client: client, url: url, dest: dest, logger: logger}
}

// Fetch downloads, validates and installs the snapshot.
//
// Postcondition: on error the file at dest is untouched.
func (f *Fetcher) Fetch(ctx context.Context) (FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("building request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetching %s: %w", f.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, fmt.Errorf("fetching %s: unexpected status %s", f.url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return FetchResult{}, fmt.Errorf("reading %s: %w", f.url, err)
	}

	records, err := countRecords(body)
	if err != nil {
		return FetchResult{}, err
	}
	if err := writeAtomic(f.dest, body); err != nil {
		return FetchResult{}, err
	}

	res := FetchResult{Path: f.dest, Digest: Digest(body), Records: records, Bytes: len(body)}
	f.logger.Info("game master refreshed",
		zap.String("path", res.Path),
		zap.String("digest", res.Digest),
		zap.Int("records", res.Records),
		zap.Int("bytes", res.Bytes),
	)
	return res, nil
}

// Digest returns the hex BLAKE2b-256 digest of a snapshot.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func countRecords(body []byte) (int, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("snapshot is not valid JSON: %w", ErrDataIntegrity)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return 0, fmt.Errorf("snapshot root must be an array: %w", ErrDataIntegrity)
	}
	n := 0
	root.ForEach(func(_, v gjson.Result) bool {
		if v.Get(templateIDPath).Exists() {
			n++
		}
		return true
	})
	if n == 0 {
		return 0, fmt.Errorf("snapshot has no template records: %w", ErrDataIntegrity)
	}
	return n, nil
}

func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".gamemaster-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(name, dest); err != nil {
		os.Remove(name)
		return fmt.Errorf("installing %s: %w", dest, err)
	}
	return nil
}
