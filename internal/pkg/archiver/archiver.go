// Package archiver streams records into a gzipped JSON Lines object on S3.
package archiver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FileExt             = ".jsonl.gz"
	LocalTempDirPattern = "boxstats-archiver-*"
)

var ErrFileAlreadyExists = errors.New("file already exists")

// ObjectStore is the subset of the S3 API the archiver needs.
type ObjectStore interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Archiver struct {
	Store  ObjectStore
	Bucket string

	// Prefix is prepended to every key, with no leading slash and usually a trailing one, e.g. "seasons/"
	Prefix string

	RealmName string

	logger zerolog.Logger
}

func New(store ObjectStore, bucket, prefix, realm string) *Archiver {
	return &Archiver{
		Store:     store,
		Bucket:    bucket,
		Prefix:    prefix,
		RealmName: realm,
		logger: log.With().
			Str("module", "archiver").
			Str("realm", realm).
			Logger(),
	}
}

// Key is the object key of the archive for the UTC day of date.
func (a *Archiver) Key(date time.Time) string {
	return a.Prefix + a.RealmName + "/" + a.RealmName + "_" + date.UTC().Format("2006-01-02") + FileExt
}

// Archive drains records into the archive object for date and returns the
// number of records written. The caller closes records once everything is
// sent. An archive that already exists is never overwritten.
func (a *Archiver) Archive(ctx context.Context, date time.Time, records <-chan any) (int, error) {
	key := a.Key(date)
	if err := a.assertNonExistence(ctx, key); err != nil {
		return 0, err
	}

	dir, err := os.MkdirTemp("", LocalTempDirPattern)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create temporary directory")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			a.logger.Warn().Err(err).Str("dir", dir).Msg("failed to remove temporary directory")
		}
	}()

	file, err := os.CreateTemp(dir, "archive-*"+FileExt)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create temporary file")
	}
	defer file.Close()

	count, err := writeRecords(ctx, file, records)
	if err != nil {
		return count, err
	}
	a.logger.Debug().Int("count", count).Str("key", key).Msg("records written to local archive")

	if _, err := file.Seek(0, 0); err != nil {
		return count, errors.Wrap(err, "failed to rewind archive file")
	}

	if _, err := a.Store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(a.Bucket),
		Key:               aws.String(key),
		Body:              file,
		ContentType:       aws.String("application/x-ndjson"),
		ContentEncoding:   aws.String("gzip"),
		StorageClass:      types.StorageClassGlacierIr,
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
	}); err != nil {
		return count, errors.Wrap(err, "failed to invoke PutObject")
	}

	a.logger.Info().Int("count", count).Str("key", key).Msg("archive uploaded")
	return count, nil
}

func (a *Archiver) assertNonExistence(ctx context.Context, key string) error {
	object, err := a.Store.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "NotFound" {
			return nil
		}
		return errors.Wrap(err, "failed to invoke HeadObject")
	}
	return errors.Wrap(ErrFileAlreadyExists, fmt.Sprintf("file %q already exists in s3 with LastModified %q", key, aws.ToTime(object.LastModified)))
}

func writeRecords(ctx context.Context, file *os.File, records <-chan any) (int, error) {
	gzipWriter := gzip.NewWriter(file)
	encoder := json.NewEncoder(gzipWriter)

	count := 0
	for {
		select {
		case <-ctx.Done():
			_ = gzipWriter.Close()
			return count, ctx.Err()
		case record, ok := <-records:
			if !ok {
				return count, errors.Wrap(gzipWriter.Close(), "failed to finish gzip stream")
			}
			if err := encoder.Encode(record); err != nil {
				_ = gzipWriter.Close()
				return count, errors.Wrap(err, "failed to encode record")
			}
			count++
		}
	}
}
