package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// FirebaseStorageClient writes objects to the project's Cloud Storage bucket
// through the Firebase Admin SDK.
type FirebaseStorageClient struct {
	bucket *gcs.BucketHandle
	name   string
}

// NewFirebaseStorageClient opens bucketName, or the app's default bucket when
// bucketName is empty.
func NewFirebaseStorageClient(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStorageClient, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase storage client: %w", err)
	}

	var bucket *gcs.BucketHandle
	if bucketName == "" {
		bucket, err = client.DefaultBucket()
	} else {
		bucket, err = client.Bucket(bucketName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}

	log.Printf("Firebase storage ready (bucket=%q)", bucketName)
	return &FirebaseStorageClient{bucket: bucket, name: bucketName}, nil
}

func (f *FirebaseStorageClient) UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error) {
	w := f.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	size, err := io.Copy(w, reader)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize %s: %w", objectName, err)
	}

	return &UploadResult{ObjectName: objectName, ContentType: contentType, Size: size}, nil
}

func (f *FirebaseStorageClient) ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	r, err := f.bucket.Object(objectName).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", objectName, err)
	}
	return r, nil
}

func (f *FirebaseStorageClient) DeleteFile(ctx context.Context, objectName string) error {
	err := f.bucket.Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", objectName, err)
	}
	return nil
}

// Close is a no-op; the underlying client belongs to the Firebase app.
func (f *FirebaseStorageClient) Close() error {
	return nil
}

var _ StorageClient = (*FirebaseStorageClient)(nil)
