package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
)

// ObjectsRoute is the local server route presigned local URLs point at.
const ObjectsRoute = "/objects"

type implLocal struct {
	root      string
	publicURL string
	now       func() time.Time
}

// NewLocal creates an ObjectStore that keeps objects under root/<bucket>/<key>.
// Presigned URLs point at publicURL + ObjectsRoute.
func NewLocal(root, publicURL string) ObjectStore {
	return &implLocal{
		root:      root,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		now:       time.Now,
	}
}

// Path resolves the filesystem path of an object, rejecting keys that escape the bucket.
func Path(root, bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key are required")
	}
	if bucket == "." || bucket == ".." || strings.ContainsAny(bucket, `/\`) {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	if err := ValidKey(key); err != nil {
		return "", err
	}
	base := filepath.Join(root, bucket)
	p := filepath.Join(base, filepath.FromSlash(key))
	if p != base && !strings.HasPrefix(p, base+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes bucket", key)
	}
	return p, nil
}

// ValidKey rejects keys with "." or ".." segments. Keys are literal like S3
// keys, so dot segments are never resolved.
func ValidKey(key string) error {
	for _, seg := range strings.Split(strings.ReplaceAll(key, `\`, "/"), "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("key %q has a dot segment", key)
		}
	}
	return nil
}

func (s *implLocal) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	base := filepath.Join(s.root, bucket)
	var objects []Object

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasSuffix(path, ".part") {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Object{Bucket: bucket, Key: key, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, apperr.New(apperr.KindStorage, "list "+prefix, err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (s *implLocal) Download(ctx context.Context, bucket, key, dst string) error {
	src, err := s.open(bucket, key)
	if err != nil {
		return err
	}
	defer src.Close()

	f, err := os.Create(dst)
	if err != nil {
		return apperr.New(apperr.KindStorage, "download "+key, fmt.Errorf("create %s: %w", dst, err))
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		return apperr.New(apperr.KindStorage, "download "+key, err)
	}
	return nil
}

func (s *implLocal) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	src, err := s.open(bucket, key)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, apperr.New(apperr.KindStorage, "get "+key, err)
	}
	return data, nil
}

func (s *implLocal) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	p, err := Path(s.root, bucket, key)
	if err != nil {
		return apperr.New(apperr.KindStorage, "put "+key, err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return apperr.New(apperr.KindStorage, "put "+key, err)
	}

	// Write then rename so readers and the watcher never see a partial object.
	tmp := p + ".part"
	if err := os.WriteFile(tmp, body, 0644); err != nil {
		return apperr.New(apperr.KindStorage, "put "+key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return apperr.New(apperr.KindStorage, "put "+key, err)
	}
	return nil
}

func (s *implLocal) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (string, error) {
	if _, err := Path(s.root, bucket, key); err != nil {
		return "", apperr.New(apperr.KindStorage, "presign "+key, err)
	}

	q := url.Values{}
	q.Set("content_type", contentType)
	q.Set("expires", strconv.FormatInt(s.now().Add(ttl).Unix(), 10))

	return fmt.Sprintf("%s%s/%s/%s?%s", s.publicURL, ObjectsRoute, url.PathEscape(bucket), escapeKey(key), q.Encode()), nil
}

// Expired reports whether a local presigned URL's expires parameter has passed.
func Expired(expires string, now time.Time) bool {
	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return true
	}
	return now.Unix() > unix
}

func (s *implLocal) open(bucket, key string) (*os.File, error) {
	p, err := Path(s.root, bucket, key)
	if err != nil {
		return nil, apperr.New(apperr.KindStorage, "get "+key, err)
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.New(apperr.KindNotFound, "get "+key, err)
		}
		return nil, apperr.New(apperr.KindStorage, "get "+key, err)
	}
	return f, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
