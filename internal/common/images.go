package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/storage"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/nfnt/resize"
)

// UploadedImage holds the stored original and its preview, if one was made.
type UploadedImage struct {
	URL        string
	PreviewURL string
}

// ProcessImage stores the image attached to the multipart form under key. A
// preview bounded by the configured preview size is stored next to it when
// withPreview is set. It returns nil when the form has no such file.
func ProcessImage(
	ctx context.Context, fileStorage storage.Storage, key, prefix string, withPreview bool,
) (*UploadedImage, error) {
	file, header, err := formFile(ctx, key)
	if err != nil {
		return nil, err
	}

	if file == nil {
		return nil, nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Cannot read the file")
	}

	mime := header.Header.Get("Content-Type")
	objs := []*storage.UploadObject{{
		Prefix:      prefix,
		FileName:    header.Filename,
		ContentType: mime,
		Data:        data,
	}}

	if withPreview {
		img, err := decodeImg(mime, bytes.NewReader(data))
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "We just accept jpeg, gif or png")
		}

		previewSize := xcontext.Configs(ctx).File.PreviewSize
		preview := resize.Thumbnail(previewSize, previewSize, img, resize.Lanczos2)
		b, err := encodeImg(mime, preview)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot encode image: %v", err)
			return nil, errorx.Unknown
		}

		objs = append(objs, &storage.UploadObject{
			Prefix:      prefix,
			FileName:    fmt.Sprintf("preview-%s", header.Filename),
			ContentType: mime,
			Data:        b,
		})
	}

	uresp, err := fileStorage.BulkUpload(ctx, objs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload image: %v", err)
		return nil, errorx.Unknown
	}

	if len(uresp) != len(objs) {
		xcontext.Logger(ctx).Errorf("Upload returned %d objects, expected %d", len(uresp), len(objs))
		return nil, errorx.Unknown
	}

	result := &UploadedImage{URL: uresp[0].Url}
	if withPreview {
		result.PreviewURL = uresp[1].Url
	}

	return result, nil
}

func formFile(ctx context.Context, key string) (multipart.File, *multipart.FileHeader, error) {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return nil, nil, nil
	}

	maxSize := xcontext.Configs(ctx).File.MaxSize
	if req.MultipartForm == nil {
		if err := req.ParseMultipartForm(maxSize); err != nil {
			if errors.Is(err, http.ErrNotMultipart) {
				return nil, nil, nil
			}

			return nil, nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
		}
	}

	file, header, err := req.FormFile(key)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}

		return nil, nil, errorx.New(errorx.BadRequest, "Error retrieving the file")
	}

	if header.Size > maxSize {
		file.Close()
		return nil, nil, errorx.New(errorx.BadRequest, "File too large (at most %d bytes)", maxSize)
	}

	return file, header, nil
}

func decodeImg(mime string, data io.Reader) (img image.Image, err error) {
	switch mime {
	case "image/jpeg":
		img, err = jpeg.Decode(data)
	case "image/png", "application/octet-stream":
		img, err = png.Decode(data)
	case "image/gif":
		img, err = gif.Decode(data)
	default:
		return nil, fmt.Errorf("unsupported image type %s", mime)
	}
	return img, err
}

func encodeImg(mime string, img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)

	var err error
	switch mime {
	case "image/jpeg":
		err = jpeg.Encode(buf, img, nil)
	case "image/png", "application/octet-stream":
		err = png.Encode(buf, img)
	case "image/gif":
		err = gif.Encode(buf, img, nil)
	default:
		return nil, fmt.Errorf("unsupported image type %s", mime)
	}
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
