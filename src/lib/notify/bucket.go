package notify

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// objectTimeLayout names notification objects by the time they were sent.
const objectTimeLayout = "20060102_150405"

// ErrInvalidBucketURL is returned by NewBucket for a malformed gs:// URL.
var ErrInvalidBucketURL = errors.New("invalid bucket URL")

// Bucket keeps a history of notifications as text objects in a GCS bucket.
type Bucket struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewBucket creates a Bucket sink for a gs://bucket/prefix URL. A malformed URL
// returns an error wrapping ErrInvalidBucketURL.
func NewBucket(ctx context.Context, url string, opts ...option.ClientOption) (*Bucket, error) {
	bucket, prefix, err := parseGCSURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBucketURL, err)
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}
	return &Bucket{client: client, bucket: bucket, prefix: prefix, now: time.Now}, nil
}

// Send writes message to <prefix>/notification_<YYYYMMDD_HHMMSS>.txt.
func (b *Bucket) Send(ctx context.Context, message string) (string, error) {
	name := objectName(b.prefix, b.now())
	w := b.client.Bucket(b.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	// Notifications are tiny, so upload them in a single request.
	w.ChunkSize = 0
	if _, err := w.Write([]byte(message + "\n")); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write gs://%s/%s: %v", b.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload gs://%s/%s: %v", b.bucket, name, err)
	}
	return Sent, nil
}

// Close closes the storage client.
func (b *Bucket) Close() error {
	return b.client.Close()
}

// parseGCSURL splits gs://bucket/some/prefix into its bucket and prefix.
func parseGCSURL(url string) (string, string, error) {
	rest, ok := strings.CutPrefix(url, "gs://")
	if !ok {
		return "", "", fmt.Errorf("bucket %q must start with gs://", url)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("bucket %q has no bucket name", url)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

func objectName(prefix string, t time.Time) string {
	return path.Join(prefix, fmt.Sprintf("notification_%s.txt", t.Format(objectTimeLayout)))
}
