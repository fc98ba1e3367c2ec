package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	objects  map[string]string
	pageSize int
	getErr   error
}

func (f *fakeS3) keys() []string {
	var ks []string
	for k := range f.objects {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	all := f.keys()
	start := 0
	if in.ContinuationToken != nil {
		for i, k := range all {
			if k == *in.ContinuationToken {
				start = i
				break
			}
		}
	}
	size := f.pageSize
	if size <= 0 {
		size = len(all)
	}
	end := start + size
	truncated := end < len(all)
	if end > len(all) {
		end = len(all)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(truncated)}
	for _, k := range all[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if truncated {
		out.NextContinuationToken = aws.String(all[end])
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func TestFetchDownloadsSIFObjects(t *testing.T) {
	dest := t.TempDir()
	api := &fakeS3{objects: map[string]string{
		"release/a.sif":   "A\ttype\tB\n",
		"release/b.sif":   "C\ttype\tD\n",
		"release/plan.md": "ignored",
	}}

	f := NewFetcher(api, "bucket", "release/", dest, nil)
	paths, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d files, want 2", len(paths))
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", p)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "plan.md")); !os.IsNotExist(err) {
		t.Error("non-sif object was downloaded")
	}
}

func TestFetchPaginates(t *testing.T) {
	api := &fakeS3{
		objects: map[string]string{
			"x/1.sif": "a", "x/2.sif": "b", "x/3.sif": "c",
		},
		pageSize: 1,
	}

	f := NewFetcher(api, "bucket", "x/", t.TempDir(), nil)
	paths, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("got %d files, want 3 across pages", len(paths))
	}
}

func TestFetchDownloadError(t *testing.T) {
	api := &fakeS3{
		objects: map[string]string{"x/1.sif": "a"},
		getErr:  errors.New("access denied"),
	}

	f := NewFetcher(api, "bucket", "x/", t.TempDir(), nil)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected download error")
	}
}

func TestFetchLeavesNoPartialFiles(t *testing.T) {
	dest := t.TempDir()
	api := &fakeS3{
		objects: map[string]string{"x/1.sif": "a"},
		getErr:  errors.New("boom"),
	}

	f := NewFetcher(api, "bucket", "x/", dest, nil)
	_, _ = f.Fetch(context.Background())

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("destination not clean: %v", entries)
	}
}
