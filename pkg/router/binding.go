package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// maxFormOverhead leaves room for the boundaries and plain values sent next to
// an uploaded file.
const maxFormOverhead = 1 << 16

func bind(ctx context.Context, method string, req any) error {
	httpReq := xcontext.HTTPRequest(ctx)

	switch method {
	case http.MethodGet:
		return decodeValues(ctx, httpReq.URL.Query(), req)

	case http.MethodPost:
		contentType := httpReq.Header.Get("Content-Type")
		if strings.HasPrefix(contentType, "multipart/form-data") {
			maxSize := xcontext.Configs(ctx).File.MaxSize
			httpReq.Body = http.MaxBytesReader(xcontext.HTTPWriter(ctx), httpReq.Body, maxSize+maxFormOverhead)
			if err := httpReq.ParseMultipartForm(maxSize); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot parse multipart form: %v", err)
				return errorx.New(errorx.BadRequest, "Invalid multipart form")
			}

			return decodeValues(ctx, httpReq.MultipartForm.Value, req)
		}

		httpReq.Body = http.MaxBytesReader(xcontext.HTTPWriter(ctx), httpReq.Body, xcontext.Configs(ctx).File.MaxSize)
		if err := json.NewDecoder(httpReq.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			xcontext.Logger(ctx).Debugf("Cannot decode json body: %v", err)
			return errorx.New(errorx.BadRequest, "Invalid json body")
		}

		return nil
	}

	return errorx.New(errorx.BadRequest, "Unsupported method %s", method)
}

// decodeValues maps form or query values onto the json-tagged fields of req.
// Single values are flattened so scalar fields decode as expected.
func decodeValues(ctx context.Context, values url.Values, req any) error {
	input := make(map[string]any, len(values))
	for key, value := range values {
		if len(value) == 1 {
			input[key] = value[0]
		} else {
			input[key] = value
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           req,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create decoder: %v", err)
		return errorx.Unknown
	}

	if err := decoder.Decode(input); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode values: %v", err)
		return errorx.New(errorx.BadRequest, "Invalid parameters")
	}

	return nil
}

func validateRequest(ctx context.Context, validate *validator.Validate, req any) error {
	err := validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errorx.New(errorx.BadRequest, "Invalid field %s (%s)", fe.Field(), fe.Tag())
	}

	var invalidErr *validator.InvalidValidationError
	if errors.As(err, &invalidErr) {
		return nil
	}

	return errorx.New(errorx.BadRequest, "Invalid request")
}
