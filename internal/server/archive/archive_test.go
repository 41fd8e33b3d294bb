package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubS3(t *testing.T) {
	t.Helper()
	origLoad, origNew, origPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := putObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNew, origPre
		putObject, presignGetObject = origPut, origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "eu-west-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://minio:9000" {
			t.Fatalf("BaseEndpoint not applied")
		}
		if !opts.UsePathStyle {
			t.Fatalf("path style not enabled")
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
}

func settings() Settings {
	return Settings{Region: "eu-west-1", AccessKey: "ak", SecretKey: "sk", BaseEndpoint: "http://minio:9000", Bucket: "cycles"}
}

func TestS3Store_PutAndPresign(t *testing.T) {
	stubS3(t)

	var gotKey, gotBody string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		assert.Equal(t, "cycles", *in.Bucket)
		gotKey = *in.Key
		b, _ := io.ReadAll(in.Body)
		gotBody = string(b)
		return nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, PresignExpiry, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "https://signed/" + *in.Key, Method: http.MethodGet}, nil
	}

	store, err := NewS3Store(context.Background(), settings())
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "k1", []byte(`{"a":1}`)))
	assert.Equal(t, "k1", gotKey)
	assert.Equal(t, `{"a":1}`, gotBody)

	url, err := store.PresignGet(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed/k1", url)
}

func TestS3Store_Errors(t *testing.T) {
	stubS3(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		return errors.New("put-fail")
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-fail")
	}

	store, err := NewS3Store(context.Background(), settings())
	require.NoError(t, err)

	err = store.Put(context.Background(), "k", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put-fail")

	_, err = store.PresignGet(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "presign-fail")

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3Store(context.Background(), settings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load-fail")
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	_, err := m.PresignGet(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, m.Put(ctx, "k", []byte("v")))
	url, err := m.PresignGet(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "memory://k", url)

	b, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", string(b))
}

func TestCycleKey(t *testing.T) {
	at := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	key := CycleKey(7, 42, at)
	assert.True(t, strings.HasPrefix(key, "workspaces/7/cycles/42/2026/03/"), key)
	assert.True(t, strings.HasSuffix(key, ".json"))
}
