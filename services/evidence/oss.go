package evidence

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
)

// OSSStore keeps evidence files in an Alibaba Cloud OSS bucket.
type OSSStore struct {
	bucket   *oss.Bucket
	prefix   string
	maxBytes int64
}

var _ Store = (*OSSStore)(nil) // interface compliance check

func NewOSSStore(conf core.EvidenceConfig) (*OSSStore, error) {
	if conf.OSSEndpoint == "" || conf.OSSAccessKey == "" || conf.OSSSecretKey == "" || conf.OSSBucket == "" {
		return nil, errors.New("missing OSS endpoint, access key, secret key or bucket")
	}
	client, err := oss.New(conf.OSSEndpoint, conf.OSSAccessKey, conf.OSSSecretKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating OSS client")
	}
	bucket, err := client.Bucket(conf.OSSBucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSS bucket")
	}
	return &OSSStore{bucket: bucket, prefix: conf.OSSPrefix, maxBytes: conf.MaxUploadMBytes << 20}, nil
}

func (s *OSSStore) Put(ctx context.Context, name, contentType string, r io.Reader) (leave.Evidence, error) {
	br := bufio.NewReaderSize(r, 512)
	if contentType == "" {
		contentType = detectContentType(br, name)
	}

	key := objectKey(s.prefix, name)
	base := filepath.Base(name)
	err := s.bucket.PutObject(key, limit(br, s.maxBytes),
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition(mime.FormatMediaType("attachment", map[string]string{"filename": base})),
	)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return leave.Evidence{}, ErrTooLarge
		}
		return leave.Evidence{}, errors.Wrap(err, "uploading evidence")
	}
	return leave.Evidence{Ref: fmt.Sprintf("oss://%s/%s", s.bucket.BucketName, key), Name: base}, nil
}

// Open downloads a stored evidence from the bucket.
func (s *OSSStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	prefix := "oss://" + s.bucket.BucketName + "/"
	if !strings.HasPrefix(ref, prefix) || len(ref) == len(prefix) {
		return nil, errors.Errorf("not an evidence of bucket %s: %q", s.bucket.BucketName, ref)
	}
	rc, err := s.bucket.GetObject(strings.TrimPrefix(ref, prefix), oss.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "downloading evidence")
	}
	return rc, nil
}

// detectContentType sniffs the first bytes, falling back to the file extension.
func detectContentType(br *bufio.Reader, name string) string {
	head, _ := br.Peek(512)
	ct := http.DetectContentType(head)
	if ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
			return byExt
		}
	}
	return ct
}
