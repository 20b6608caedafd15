package evidence

import (
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
)

// Store keeps evidence files and reads them back.
type Store interface {
	leave.EvidenceStore
	leave.EvidenceOpener
}

var (
	ErrTooLarge = errors.New("evidence file is too large")

	nowFunc = time.Now // mockable
)

// New returns the evidence store selected by conf.Evidence.Backend.
func New(conf core.EvidenceConfig) (Store, error) {
	switch core.CleanString(conf.Backend, true /* lower */) {
	case "", "local":
		return NewLocalStore(conf.Dir, conf.MaxUploadMBytes<<20)
	case "oss":
		return NewOSSStore(conf)
	}
	return nil, errors.Errorf("unknown evidence backend %q", conf.Backend)
}

// objectKey files evidence by month under a random name keeping the original extension.
func objectKey(prefix, name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	return path.Join(strings.Trim(prefix, "/"), nowFunc().UTC().Format("2006/01"), uuid.New().String()+ext)
}

// limitedReader fails once more than n bytes were read.
type limitedReader struct {
	r io.Reader
	n int64
}

func limit(r io.Reader, max int64) io.Reader {
	if max <= 0 {
		return r
	}
	return &limitedReader{r: r, n: max}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
