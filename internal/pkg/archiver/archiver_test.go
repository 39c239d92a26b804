package archiver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	exists bool
	puts   map[string][]byte
}

func (f *fakeStore) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.exists {
		return &s3.HeadObjectOutput{LastModified: aws.Time(time.Unix(0, 0))}, nil
	}
	return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
}

func (f *fakeStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func feed(records ...any) <-chan any {
	ch := make(chan any, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)
	return ch
}

func TestArchive(t *testing.T) {
	store := &fakeStore{}
	a := New(store, "bucket", "seasons/", "boxstats")
	date := time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)

	count, err := a.Archive(context.Background(), date, feed(
		map[string]int{"season_number": 1},
		map[string]int{"season_number": 2},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	key := "seasons/boxstats/boxstats_2024-03-09.jsonl.gz"
	require.Contains(t, store.puts, key)

	gz, err := gzip.NewReader(bytes.NewReader(store.puts[key]))
	require.NoError(t, err)
	scanner := bufio.NewScanner(gz)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{`{"season_number":1}`, `{"season_number":2}`}, lines)
}

func TestArchiveRefusesOverwrite(t *testing.T) {
	store := &fakeStore{exists: true}
	a := New(store, "bucket", "", "boxstats")

	_, err := a.Archive(context.Background(), time.Now(), feed())
	assert.True(t, errors.Is(err, ErrFileAlreadyExists))
	assert.Empty(t, store.puts)
}

