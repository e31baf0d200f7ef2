package hosting

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	bucket       string
	body         string
	contentType  string
	cacheControl string
}

type fakePutter struct {
	mu     sync.Mutex
	calls  map[string]putCall
	failOn string
}

func newFakePutter() *fakePutter {
	return &fakePutter{calls: make(map[string]putCall)}
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key] = putCall{
		bucket:       aws.ToString(in.Bucket),
		body:         string(body),
		contentType:  aws.ToString(in.ContentType),
		cacheControl: aws.ToString(in.CacheControl),
	}
	return &s3.PutObjectOutput{}, nil
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":          "<html></html>",
		"assets/app-1a2b.js":  "console.log(1)",
		"assets/app-1a2b.css": "body{}",
		"favicon.svg":         "<svg/>",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func factoryFor(p ObjectPutter) ClientFactory {
	return func(context.Context, Target) (ObjectPutter, error) { return p, nil }
}

func TestDeploy_UploadsEveryFile(t *testing.T) {
	dir := writeArtifact(t)
	putter := newFakePutter()
	d := NewDeployer(factoryFor(putter), 2, nil)

	res, err := d.Deploy(context.Background(), dir, Target{Name: "dev", Bucket: "openstay-dev", Prefix: "/site/"})
	require.NoError(t, err)

	require.Equal(t, int64(4), res.Objects)
	require.Equal(t, int64(len("<html></html>")+len("console.log(1)")+len("body{}")+len("<svg/>")), res.Bytes)
	require.Len(t, putter.calls, 4)

	index := putter.calls["site/index.html"]
	require.Equal(t, "openstay-dev", index.bucket)
	require.Equal(t, "<html></html>", index.body)
	require.Equal(t, "no-cache", index.cacheControl)
	require.Contains(t, index.contentType, "text/html")

	js := putter.calls["site/assets/app-1a2b.js"]
	require.Empty(t, js.cacheControl)
	require.Equal(t, "console.log(1)", js.body)
	require.Contains(t, putter.calls["site/assets/app-1a2b.css"].contentType, "text/css")
}

func TestDeploy_UploadFailure(t *testing.T) {
	dir := writeArtifact(t)
	putter := newFakePutter()
	putter.failOn = "favicon.svg"
	d := NewDeployer(factoryFor(putter), 1, nil)

	_, err := d.Deploy(context.Background(), dir, Target{Name: "dev", Bucket: "b"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "deploying to dev")
	require.Contains(t, err.Error(), "access denied")
}

func TestDeploy_EmptyDirectory(t *testing.T) {
	d := NewDeployer(factoryFor(newFakePutter()), 0, nil)
	_, err := d.Deploy(context.Background(), t.TempDir(), Target{Name: "dev", Bucket: "b"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "is empty")
}

func TestDeploy_MissingDirectory(t *testing.T) {
	d := NewDeployer(factoryFor(newFakePutter()), 0, nil)
	_, err := d.Deploy(context.Background(), filepath.Join(t.TempDir(), "dist"), Target{Name: "dev", Bucket: "b"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "walking artifact directory")
}

func TestDeploy_ClientFactoryError(t *testing.T) {
	dir := writeArtifact(t)
	d := NewDeployer(func(context.Context, Target) (ObjectPutter, error) {
		return nil, errors.New("no credentials")
	}, 0, nil)

	_, err := d.Deploy(context.Background(), dir, Target{Name: "dev", Bucket: "b"})
	require.EqualError(t, err, "no credentials")
}

func TestObjectKey(t *testing.T) {
	require.Equal(t, "index.html", ObjectKey("", "index.html"))
	require.Equal(t, "index.html", ObjectKey("/", "index.html"))
	require.Equal(t, "app/assets/a.js", ObjectKey("app/", "assets/a.js"))
	require.Equal(t, "a/b/c.js", ObjectKey("/a/b", "c.js"))
}

func TestContentType(t *testing.T) {
	require.Contains(t, ContentType("index.html"), "text/html")
	require.Contains(t, ContentType("assets/app.js"), "javascript")
	require.Equal(t, "application/octet-stream", ContentType("LICENSE"))
}
