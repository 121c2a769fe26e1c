package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSettings = S3Settings{
	AccessKey:    "minioadmin",
	SecretKey:    "minioadmin",
	Bucket:       "avatars",
	Region:       "us-east-1",
	BaseEndpoint: "http://127.0.0.1:9000",
}

// stubAWS swaps the client constructors and restores them after the test.
func stubAWS(t *testing.T) *string {
	t.Helper()

	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	var endpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint != nil {
			endpoint = *opts.BaseEndpoint
		}
		if !opts.UsePathStyle {
			t.Fatalf("path-style addressing expected for custom endpoint")
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	return &endpoint
}

func TestPresignPut(t *testing.T) {
	endpoint := stubAWS(t)

	var gotBucket, gotKey string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket, gotKey = *in.Bucket, *in.Key

		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, PresignExpiry, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/avatars/" + *in.Key + "?X-Amz-Signature=abc"}, nil
	}

	store := NewAvatarStore(testSettings)
	store.now = func() time.Time { return time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC) }

	key, url, err := store.PresignPut(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000", *endpoint)
	assert.Equal(t, "avatars", gotBucket)
	assert.Equal(t, gotKey, key)
	assert.Regexp(t, regexp.MustCompile(`^avatars/u-1/2024/02/03/[0-9a-f-]{36}$`), key)
	assert.Contains(t, url, key)
}

func TestPresignGet(t *testing.T) {
	stubAWS(t)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://signed/" + *in.Key}, nil
	}

	url, err := NewAvatarStore(testSettings).PresignGet(context.Background(), "avatars/u-1/x")
	require.NoError(t, err)
	assert.Equal(t, "http://signed/avatars/u-1/x", url)
}

func TestPresign_Errors(t *testing.T) {
	stubAWS(t)

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}
	_, _, err := NewAvatarStore(testSettings).PresignPut(context.Background(), "u-1")
	require.EqualError(t, err, "presign-put-fail")

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewAvatarStore(testSettings).PresignGet(context.Background(), "k")
	require.EqualError(t, err, "load-fail")
}
