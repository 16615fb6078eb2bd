package uploader

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadFolder = "reviews"

type Uploader interface {
	// UploadAll uploads every non-empty file and returns the secure URLs in
	// upload order. Empty or unnamed files are skipped silently. The first
	// failure aborts the remaining batch.
	UploadAll(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func (u *CloudinaryUploader) UploadAll(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := []string{}

	for _, header := range files {
		if header == nil || header.Filename == "" || header.Size == 0 {
			continue
		}

		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", header.Filename, err)
		}

		resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
			Folder:       uploadFolder,
			ResourceType: "auto",
		})
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("cloudinary upload %q: %w", header.Filename, err)
		}

		urls = append(urls, resp.SecureURL)
	}

	return urls, nil
}
