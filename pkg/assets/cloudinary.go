// Package assets wraps the Cloudinary asset host behind a small store
// interface: upload an image, get back a durable URL, delete by URL.
package assets

import (
	"context"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Store accepts an uploaded image and returns a durable reference URL, and
// accepts a reference URL for deletion. Reference strings are otherwise
// opaque to the rest of the application.
type Store interface {
	Upload(ctx context.Context, image string) (string, error)
	Destroy(ctx context.Context, assetURL string) error
}

// CloudinaryStore implements Store using Cloudinary
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore creates a CloudinaryStore from a CLOUDINARY_URL-style URL
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload sends an image (data URI or remote URL) to Cloudinary and returns
// its secure URL.
func (s *CloudinaryStore) Upload(ctx context.Context, image string) (string, error) {
	res, err := s.cld.Upload.Upload(ctx, image, uploader.UploadParams{})
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

// Destroy deletes the asset referenced by a previously returned URL.
func (s *CloudinaryStore) Destroy(ctx context.Context, assetURL string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: PublicIDFromURL(assetURL)})
	return err
}

// PublicIDFromURL extracts the Cloudinary public ID from a delivery URL:
// the last path segment with its file extension stripped.
func PublicIDFromURL(assetURL string) string {
	segments := strings.Split(assetURL, "/")
	last := segments[len(segments)-1]
	return strings.SplitN(last, ".", 2)[0]
}
