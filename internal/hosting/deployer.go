package hosting

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/openstay/openstay-release/internal/logging"
)

// DefaultConcurrency bounds parallel uploads per target.
const DefaultConcurrency = 8

const (
	documentName     = "index.html"
	noCache          = "no-cache"
	fallbackMimeType = "application/octet-stream"
)

// ObjectPutter is the subset of the S3 API the deployer uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ClientFactory returns a client for a target.
type ClientFactory func(ctx context.Context, target Target) (ObjectPutter, error)

// NewS3Client loads the default AWS configuration, honoring the target's
// region and profile when set.
func NewS3Client(ctx context.Context, target Target) (ObjectPutter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if target.Region != "" {
		opts = append(opts, awsconfig.WithRegion(target.Region))
	}
	if target.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(target.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for %s: %w", target.Name, err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Result summarizes one target upload.
type Result struct {
	Target  string `json:"target"`
	Bucket  string `json:"bucket"`
	Prefix  string `json:"prefix,omitempty"`
	Objects int64  `json:"objects"`
	Bytes   int64  `json:"bytes"`
}

// Deployer uploads artifact directories.
type Deployer struct {
	newClient   ClientFactory
	concurrency int
	log         *slog.Logger
}

// NewDeployer creates a deployer. A nil factory uses NewS3Client.
func NewDeployer(factory ClientFactory, concurrency int, log *slog.Logger) *Deployer {
	if factory == nil {
		factory = NewS3Client
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Deployer{newClient: factory, concurrency: concurrency, log: logging.OrDiscard(log)}
}

// Deploy uploads every file under dir to the target bucket. The first
// failed upload cancels the rest.
func (d *Deployer) Deploy(ctx context.Context, dir string, target Target) (Result, error) {
	res := Result{Target: target.Name, Bucket: target.Bucket, Prefix: target.Prefix}

	files, err := collectFiles(dir)
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		return res, fmt.Errorf("artifact directory %s is empty", dir)
	}

	client, err := d.newClient(ctx, target)
	if err != nil {
		return res, err
	}

	d.log.Info("deploying artifact", "target", target.Name, "bucket", target.Bucket, "files", len(files))

	var objects, bytes atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, rel := range files {
		g.Go(func() error {
			n, err := d.upload(gctx, client, dir, rel, target)
			if err != nil {
				return err
			}
			objects.Add(1)
			bytes.Add(n)
			return nil
		})
	}

	err = g.Wait()
	res.Objects = objects.Load()
	res.Bytes = bytes.Load()
	if err != nil {
		return res, fmt.Errorf("deploying to %s: %w", target.Name, err)
	}

	d.log.Info("deployed artifact", "target", target.Name, "objects", res.Objects, "bytes", res.Bytes)
	return res, nil
}

func (d *Deployer) upload(ctx context.Context, client ObjectPutter, dir, rel string, target Target) (int64, error) {
	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", rel, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", rel, err)
	}

	key := ObjectKey(target.Prefix, rel)
	in := &s3.PutObjectInput{
		Bucket:        aws.String(target.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType(rel)),
	}
	if path.Base(rel) == documentName {
		in.CacheControl = aws.String(noCache)
	}

	if _, err := client.PutObject(ctx, in); err != nil {
		return 0, fmt.Errorf("uploading %s: %w", key, err)
	}
	d.log.Debug("uploaded object", "bucket", target.Bucket, "key", key, "bytes", info.Size())
	return info.Size(), nil
}

// ObjectKey joins a target prefix and a slash-separated relative path.
func ObjectKey(prefix, rel string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// ContentType returns the MIME type for a file name by extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return fallbackMimeType
}

// collectFiles returns every regular file under dir as a slash-separated
// path relative to dir, in lexical order.
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking artifact directory: %w", err)
	}
	return files, nil
}
