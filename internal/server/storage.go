package server

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore hands out a publicly resolvable URL for an uploaded blob. The
// engine never looks inside the URL.
type BlobStore interface {
	Save(name, contentType string, r io.Reader) (string, error)
}

// DiskStore keeps uploads on local disk and serves them from the process,
// standing in for a hosted object store.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (d *DiskStore) Dir() string     { return d.dir }
func (d *DiskStore) BaseURL() string { return d.baseURL }

func (d *DiskStore) Save(name, contentType string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	file, err := os.Create(filepath.Join(d.dir, name))
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err := io.Copy(file, r); err != nil {
		return "", err
	}
	return d.baseURL + "/" + name, nil
}

// submissionBlobName builds a collision-free object name in the shape the
// original uploads used: player, timestamp, random suffix, extension.
func submissionBlobName(playerID, contentType string) string {
	ext := ".png"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s_%d_%s%s", playerID, time.Now().UnixMilli(), suffix, ext)
}
