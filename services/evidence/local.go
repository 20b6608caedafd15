package evidence

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core/leave"
)

const localScheme = "local://"

// LocalStore keeps evidence files on the local filesystem.
type LocalStore struct {
	dir      string
	maxBytes int64
}

var _ Store = (*LocalStore)(nil) // interface compliance check

func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errors.Wrap(err, "creating evidence dir")
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *LocalStore) Put(_ context.Context, name, _ string, r io.Reader) (leave.Evidence, error) {
	key := objectKey("", name)
	fp := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fp), 0750); err != nil {
		return leave.Evidence{}, errors.Wrap(err, "creating evidence dir")
	}

	f, err := os.OpenFile(fp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0640)
	if err != nil {
		return leave.Evidence{}, errors.Wrap(err, "creating evidence file")
	}
	_, err = io.Copy(f, limit(r, s.maxBytes))
	if cErr := f.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		_ = os.Remove(fp)
		if errors.Is(err, ErrTooLarge) {
			return leave.Evidence{}, ErrTooLarge
		}
		return leave.Evidence{}, errors.Wrap(err, "writing evidence file")
	}
	return leave.Evidence{Ref: localScheme + key, Name: filepath.Base(name)}, nil
}

// Open returns the content of a stored evidence.
func (s *LocalStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if len(ref) <= len(localScheme) || ref[:len(localScheme)] != localScheme {
		return nil, errors.Errorf("not a local evidence: %q", ref)
	}
	key := filepath.FromSlash(ref[len(localScheme):])
	fp := filepath.Join(s.dir, filepath.Clean(string(filepath.Separator)+key))
	return os.Open(fp)
}
