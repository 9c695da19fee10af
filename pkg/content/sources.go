package content

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	rerrors "github.com/vango-dev/pagerouter/internal/errors"
)

// maxBodySize caps remote and file content.
const maxBodySize = 10 << 20

// ObjectGetter is the part of *s3.Client the loader uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func isScript(src string) bool {
	return strings.HasSuffix(src, ".js") || strings.HasSuffix(src, ".ts")
}

func isS3(src string) bool {
	return strings.HasPrefix(src, "s3://")
}

func isFile(src string) bool {
	return strings.HasPrefix(src, "file:")
}

func (l *Loader) fetchModule(ctx context.Context, src string) (c Content, err error) {
	l.mu.RLock()
	load, ok := l.modules[src]
	l.mu.RUnlock()
	if !ok {
		return nil, rerrors.New("R007").WithDetailf("no module registered for %q", src)
	}

	defer func() {
		if p := recover(); p != nil {
			err = rerrors.New("R002").WithDetailf("module %q panicked: %v", src, p)
		}
	}()
	c, err = load(ctx)
	if err != nil {
		return nil, rerrors.New("R002").WithDetailf("module %q", src).Wrap(err)
	}
	if c == nil {
		c = Text("")
	}
	return c, nil
}

// ParseS3Source splits "s3://bucket/key" into bucket and key.
func ParseS3Source(src string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(src, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 source: %q", src)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 source %q needs a bucket and a key", src)
	}
	return bucket, key, nil
}

func (l *Loader) fetchS3(ctx context.Context, src string) (Content, error) {
	if l.s3 == nil {
		return nil, rerrors.New("R002").WithDetailf("loading %q: no S3 client configured", src)
	}
	bucket, key, err := ParseS3Source(src)
	if err != nil {
		return nil, rerrors.New("R002").Wrap(err)
	}

	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, rerrors.New("R002").WithDetailf("loading %q", src).Wrap(err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, maxBodySize))
	if err != nil {
		return nil, rerrors.New("R002").WithDetailf("reading %q", src).Wrap(err)
	}
	return Text(body), nil
}

func (l *Loader) fetchFile(src string) (Content, error) {
	if l.fsys == nil {
		return nil, rerrors.New("R002").WithDetailf("loading %q: no filesystem configured", src)
	}
	name := strings.TrimPrefix(strings.TrimPrefix(src, "file:"), "/")
	body, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, rerrors.New("R002").WithDetailf("loading %q", src).Wrap(err)
	}
	return Text(body), nil
}

func (l *Loader) fetchHTTP(ctx context.Context, src string) (Content, error) {
	target, err := l.resolveURL(src)
	if err != nil {
		return nil, rerrors.New("R002").WithDetailf("loading %q", src).Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, rerrors.New("R002").WithDetailf("loading %q", src).Wrap(err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, rerrors.New("R002").WithDetailf("loading %q", src).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, rerrors.New("R002").WithDetailf("loading %q content failed with status code %d", src, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, rerrors.New("R002").WithDetailf("reading %q", src).Wrap(err)
	}
	return Text(body), nil
}

func (l *Loader) resolveURL(src string) (string, error) {
	ref, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if l.baseURL == nil {
		return "", fmt.Errorf("relative source %q needs a base URL", src)
	}
	return l.baseURL.ResolveReference(ref).String(), nil
}
