package evidence

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhazelina/qr-absence-sub000/core"
)

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	old := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = old })
}

func TestObjectKey(t *testing.T) {
	mockNow(t, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC))
	keyRe := regexp.MustCompile(`^evidence/2024/03/[0-9a-f-]{36}\.pdf$`)

	assert.Regexp(t, keyRe, objectKey("/evidence/", "../../Doctor Note.PDF"))
	assert.NotEqual(t, objectKey("evidence", "a.pdf"), objectKey("evidence", "a.pdf"))
	assert.Regexp(t, `^2024/03/[0-9a-f-]{36}$`, objectKey("", "letter"))
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "evidence"), 1<<10)
	require.NoError(t, err)

	ev, err := store.Put(context.Background(), "../note.txt", "text/plain", strings.NewReader("sick since monday"))
	require.NoError(t, err)
	assert.Equal(t, "note.txt", ev.Name)
	assert.True(t, strings.HasPrefix(ev.Ref, localScheme))

	rc, err := store.Open(context.Background(), ev.Ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "sick since monday", string(data))

	_, err = store.Open(context.Background(), "oss://bucket/key")
	assert.Error(t, err)
}

func TestOSSStore_OpenForeignRef(t *testing.T) {
	store, err := NewOSSStore(core.EvidenceConfig{
		OSSEndpoint:  "https://oss-ap-southeast-5.aliyuncs.com",
		OSSAccessKey: "key",
		OSSSecretKey: "secret",
		OSSBucket:    "absence-evidence",
	})
	require.NoError(t, err)

	for _, ref := range []string{"local://2024/03/a.pdf", "oss://other-bucket/2024/03/a.pdf", "oss://absence-evidence/"} {
		_, err = store.Open(context.Background(), ref)
		assert.Error(t, err, ref)
	}
}

func TestLocalStore_TooLarge(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, 8)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "scan.jpg", "", strings.NewReader("more than eight bytes"))
	assert.Equal(t, ErrTooLarge, err)

	var files []string
	_ = filepath.Walk(dir, func(fp string, info os.FileInfo, _ error) error {
		if info != nil && !info.IsDir() {
			files = append(files, fp)
		}
		return nil
	})
	assert.Empty(t, files, "partial file removed")
}

func TestNew(t *testing.T) {
	store, err := New(core.EvidenceConfig{Backend: "local", Dir: t.TempDir(), MaxUploadMBytes: 1})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(core.EvidenceConfig{Backend: "oss"})
	assert.Error(t, err, "OSS credentials required")

	_, err = New(core.EvidenceConfig{Backend: "ftp"})
	assert.Error(t, err)
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "note.pdf", content: "%PDF-1.4 ...", want: "application/pdf"},
		{name: "photo.png", content: "\x89PNG\r\n\x1a\n", want: "image/png"},
		{name: "letter.txt", content: "hello", want: "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := bufio.NewReaderSize(strings.NewReader(tt.content), 512)
			assert.Equal(t, tt.want, detectContentType(br, tt.name))
			rest, _ := io.ReadAll(br)
			assert.Equal(t, tt.content, string(rest), "peeking keeps the content")
		})
	}
}
