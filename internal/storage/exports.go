package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const exportsPrefix = "exports"

// Bucket is the subset of ObjectStore used to publish exports.
type Bucket interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, cacheControl string) error
	PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error)
	PublicURL(key string) string
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

type Published struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ExportPublisher uploads rendered exports under exports/{date}/{uuid}.{ext}.
type ExportPublisher struct {
	bucket   Bucket
	location *time.Location
	linkTTL  time.Duration
	now      func() time.Time
	newID    func() string
}

func NewExportPublisher(bucket Bucket, location *time.Location, linkTTL time.Duration) *ExportPublisher {
	if location == nil {
		location = time.Local
	}
	return &ExportPublisher{
		bucket:   bucket,
		location: location,
		linkTTL:  linkTTL,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ExportKey builds the object key for an export created at t.
func ExportKey(t time.Time, id string, ext string) string {
	return path.Join(exportsPrefix, t.Format("2006-01-02"), id+"."+strings.TrimPrefix(ext, "."))
}

func (p *ExportPublisher) Publish(ctx context.Context, ext string, contentType string, body []byte) (Published, error) {
	if p == nil || p.bucket == nil {
		return Published{}, ErrObjectStoreDisabled
	}
	at := p.now().In(p.location)
	key := ExportKey(at, p.newID(), ext)
	if err := p.bucket.PutObject(ctx, key, body, contentType, ""); err != nil {
		return Published{}, err
	}

	url := p.bucket.PublicURL(key)
	if url == "" {
		signed, err := p.bucket.PresignGetObject(ctx, key, p.linkTTL)
		if err != nil {
			return Published{}, fmt.Errorf("link export: %w", err)
		}
		url = signed
	}
	return Published{Key: key, URL: url, ContentType: contentType, Size: len(body), PublishedAt: at}, nil
}

// List returns export keys for one day, newest name last.
func (p *ExportPublisher) List(ctx context.Context, day time.Time) ([]string, error) {
	if p == nil || p.bucket == nil {
		return nil, ErrObjectStoreDisabled
	}
	keys, err := p.bucket.ListKeys(ctx, path.Join(exportsPrefix, day.In(p.location).Format("2006-01-02"))+"/")
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
