package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/router"
	"github.com/campus-events/backend/pkg/testutil"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"min=0,max=10"`
	Flag  bool   `json:"flag"`
}

type echoResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Flag  bool   `json:"flag"`
	User  string `json:"user"`
}

type envelope struct {
	Code  int64        `json:"code"`
	Error string       `json:"error"`
	Data  echoResponse `json:"data"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "fail" {
		return nil, errorx.New(errorx.NotFound, "Not found")
	}

	return &echoResponse{
		Name:  req.Name,
		Count: req.Count,
		Flag:  req.Flag,
		User:  xcontext.RequestUserID(ctx),
	}, nil
}

func serve(t *testing.T, r *router.Router, req *http.Request) envelope {
	rec := httptest.NewRecorder()
	r.Handler(testutil.MockConfigs().ApiServer).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func Test_Router_Binding(t *testing.T) {
	r := router.New(testutil.MockContext())
	router.GET(r, "/echo", echo)
	router.POST(r, "/echoPost", echo)

	resp := serve(t, r, httptest.NewRequest(http.MethodGet, "/echo?name=alice&count=3&flag=true", nil))
	require.Zero(t, resp.Code)
	require.Equal(t, echoResponse{Name: "alice", Count: 3, Flag: true}, resp.Data)

	body := strings.NewReader(`{"name":"bob","count":2}`)
	req := httptest.NewRequest(http.MethodPost, "/echoPost", body)
	req.Header.Set("Content-Type", "application/json")
	resp = serve(t, r, req)
	require.Zero(t, resp.Code)
	require.Equal(t, echoResponse{Name: "bob", Count: 2}, resp.Data)
}

func multipartBody(t *testing.T, name string, fileSize int) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", name))

	part, err := writer.CreateFormFile("image", "proof.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{'x'}, fileSize))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func Test_Router_MultipartLimit(t *testing.T) {
	r := router.New(testutil.MockContext())
	router.POST(r, "/echoPost", echo)
	maxSize := int(testutil.MockConfigs().File.MaxSize)

	body, contentType := multipartBody(t, "carol", 1024)
	req := httptest.NewRequest(http.MethodPost, "/echoPost", body)
	req.Header.Set("Content-Type", contentType)
	resp := serve(t, r, req)
	require.Zero(t, resp.Code)
	require.Equal(t, "carol", resp.Data.Name)

	body, contentType = multipartBody(t, "carol", 2*maxSize)
	req = httptest.NewRequest(http.MethodPost, "/echoPost", body)
	req.Header.Set("Content-Type", contentType)
	resp = serve(t, r, req)
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
}

func Test_Router_Errors(t *testing.T) {
	r := router.New(testutil.MockContext())
	router.GET(r, "/echo", echo)
	router.POST(r, "/echoPost", echo)

	testCases := []struct {
		name string
		req  *http.Request
		code errorx.Code
	}{
		{
			name: "missing required field",
			req:  httptest.NewRequest(http.MethodGet, "/echo?count=1", nil),
			code: errorx.BadRequest,
		},
		{
			name: "out of range",
			req:  httptest.NewRequest(http.MethodGet, "/echo?name=a&count=11", nil),
			code: errorx.BadRequest,
		},
		{
			name: "not a number",
			req:  httptest.NewRequest(http.MethodGet, "/echo?name=a&count=abc", nil),
			code: errorx.BadRequest,
		},
		{
			name: "invalid json",
			req:  httptest.NewRequest(http.MethodPost, "/echoPost", strings.NewReader(`{"name":`)),
			code: errorx.BadRequest,
		},
		{
			name: "handler error",
			req:  httptest.NewRequest(http.MethodGet, "/echo?name=fail", nil),
			code: errorx.NotFound,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(t, r, tt.req)
			require.Equal(t, int64(tt.code), resp.Code)
			require.NotEmpty(t, resp.Error)
		})
	}
}

func Test_Router_WrongMethod(t *testing.T) {
	r := router.New(testutil.MockContext())
	router.POST(r, "/echoPost", echo)

	rec := httptest.NewRecorder()
	r.Handler(testutil.MockConfigs().ApiServer).ServeHTTP(
		rec, httptest.NewRequest(http.MethodGet, "/echoPost?name=a", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func Test_Router_Middlewares(t *testing.T) {
	r := router.New(testutil.MockContext())

	var closedCodes []int
	r.AddCloser(func(ctx context.Context) {
		closedCodes = append(closedCodes, router.ErrorCode(xcontext.Error(ctx)))
	})

	authorized := r.Branch()
	authorized.Before(func(ctx context.Context) (context.Context, error) {
		return xcontext.WithRequestUserID(ctx, "user1"), nil
	})
	router.GET(authorized, "/me", echo)

	denied := r.Branch()
	denied.Before(func(ctx context.Context) (context.Context, error) {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	})
	router.GET(denied, "/denied", echo)

	resp := serve(t, r, httptest.NewRequest(http.MethodGet, "/me?name=alice", nil))
	require.Zero(t, resp.Code)
	require.Equal(t, "user1", resp.Data.User)

	resp = serve(t, r, httptest.NewRequest(http.MethodGet, "/denied?name=alice", nil))
	require.Equal(t, int64(errorx.PermissionDenied), resp.Code)

	require.Equal(t, []int{0, int(errorx.PermissionDenied)}, closedCodes)
}
