package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/devsync/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "avatars",
	}
}

// stubAWS replaces the config loader and records the options applied to
// the S3 client.
func stubAWS(t *testing.T) *s3.Options {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	applied := &s3.Options{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(applied)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}
	return applied
}

func TestPut(t *testing.T) {
	applied := stubAWS(t)

	orig := putObject
	t.Cleanup(func() { putObject = orig })

	var got *s3.PutObjectInput
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		got = in
		return nil
	}

	err := NewS3Store(testConfig()).Put(context.Background(), "avatars/1/a.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "avatars", aws.ToString(got.Bucket))
	assert.Equal(t, "avatars/1/a.png", aws.ToString(got.Key))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.EqualValues(t, 3, aws.ToInt64(got.ContentLength))
	body, _ := io.ReadAll(got.Body)
	assert.Equal(t, "png", string(body))

	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(applied.BaseEndpoint))
	assert.True(t, applied.UsePathStyle)
}

func TestPut_NoContentType(t *testing.T) {
	stubAWS(t)
	orig := putObject
	t.Cleanup(func() { putObject = orig })

	var got *s3.PutObjectInput
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		got = in
		return errors.New("denied")
	}

	err := NewS3Store(testConfig()).Put(context.Background(), "k", strings.NewReader(""), 0, "")
	require.EqualError(t, err, "denied")
	assert.Nil(t, got.ContentType)
}

func TestPresignedGetURL(t *testing.T) {
	stubAWS(t)
	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, PresignExpiry, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "http://signed/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
	}

	url, err := NewS3Store(testConfig()).PresignedGetURL(context.Background(), "avatars/1/a.png")
	require.NoError(t, err)
	assert.Equal(t, "http://signed/avatars/avatars/1/a.png", url)
}

func TestPresignedGetURL_Error(t *testing.T) {
	stubAWS(t)
	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}

	_, err := NewS3Store(testConfig()).PresignedGetURL(context.Background(), "k")
	assert.EqualError(t, err, "sign failed")
}

func TestDelete(t *testing.T) {
	stubAWS(t)
	orig := deleteObject
	t.Cleanup(func() { deleteObject = orig })

	var key string
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		key = aws.ToString(in.Key)
		return nil
	}

	require.NoError(t, NewS3Store(testConfig()).Delete(context.Background(), "avatars/2/b.png"))
	assert.Equal(t, "avatars/2/b.png", key)
}

func TestLoadConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	s := NewS3Store(testConfig())
	assert.Error(t, s.Put(context.Background(), "k", strings.NewReader(""), 0, ""))
	_, err := s.PresignedGetURL(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Delete(context.Background(), "k"))
}
