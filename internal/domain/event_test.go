package domain

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campus-events/backend/internal/domain/search"
	"github.com/campus-events/backend/internal/model"
	"github.com/campus-events/backend/internal/repository"
	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/storage"
	"github.com/campus-events/backend/pkg/testutil"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestEventDomain(ctx context.Context, fileStorage storage.Storage) EventDomain {
	return NewEventDomain(
		repository.NewEventRepository(),
		repository.NewUserRepository(),
		search.NewBleveIndex(ctx),
		fileStorage,
	)
}

func eventIDs(events []model.Event) []string {
	ids := []string{}
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func Test_eventDomain_Create(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestEventDomain(ctx, &testutil.MockStorage{})

	capacity := int64(40)
	isPublic := true
	validInput := model.EventInput{
		Title:     "Chess Championship",
		Venue:     "Library Hall",
		StartTime: "2030-04-01T09:00:00Z",
		EndTime:   "2030-04-01T18:00:00Z",
		Capacity:  &capacity,
		Tiers:     []string{"single", "duo"},
		Status:    "published",
		IsPublic:  &isPublic,
	}

	type args struct {
		userID string
		input  model.EventInput
	}

	tests := []struct {
		name    string
		args    args
		wantErr errorx.Code
	}{
		{
			name: "happy case",
			args: args{userID: testutil.Committee1.ID, input: validInput},
		},
		{
			name:    "student cannot create events",
			args:    args{userID: testutil.Student1.ID, input: validInput},
			wantErr: errorx.PermissionDenied,
		},
		{
			name: "missing title",
			args: args{userID: testutil.Committee1.ID, input: model.EventInput{
				StartTime: validInput.StartTime,
				EndTime:   validInput.EndTime,
			}},
			wantErr: errorx.BadRequest,
		},
		{
			name: "end before start",
			args: args{userID: testutil.Committee1.ID, input: model.EventInput{
				Title:     "Backwards",
				StartTime: validInput.EndTime,
				EndTime:   validInput.StartTime,
			}},
			wantErr: errorx.BadRequest,
		},
		{
			name: "invalid time layout",
			args: args{userID: testutil.Admin1.ID, input: model.EventInput{
				Title:     "Sloppy",
				StartTime: "tomorrow",
				EndTime:   validInput.EndTime,
			}},
			wantErr: errorx.BadRequest,
		},
		{
			name: "invalid tier",
			args: args{userID: testutil.Admin1.ID, input: model.EventInput{
				Title:     "Quartet",
				StartTime: validInput.StartTime,
				EndTime:   validInput.EndTime,
				Tiers:     []string{"quartet"},
			}},
			wantErr: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userCtx := testutil.MockContextWithUserID(ctx, tt.args.userID)
			resp, err := d.Create(userCtx, &model.CreateEventRequest{EventInput: tt.args.input})
			if tt.wantErr != 0 {
				require.True(t, errorx.Is(err, tt.wantErr), "got %v", err)
				return
			}

			require.NoError(t, err)

			event, err := d.Get(userCtx, &model.GetEventRequest{ID: resp.ID})
			require.NoError(t, err)
			require.Equal(t, tt.args.userID, event.CreatedBy)
			require.Equal(t, "published", event.Status)
			require.Equal(t, []string{"single", "duo"}, event.AllowedTiers)
			require.Equal(t, int64(40), *event.Capacity)
			require.False(t, event.Full)

			found, err := d.GetList(ctx, &model.GetEventsRequest{Q: "chess"})
			require.NoError(t, err)
			require.Equal(t, []string{resp.ID}, eventIDs(found.Events))
		})
	}
}

func Test_eventDomain_Get_HiddenEvent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestEventDomain(ctx, &testutil.MockStorage{})

	tests := []struct {
		name    string
		userID  string
		wantErr bool
	}{
		{name: "organizer sees the draft", userID: testutil.Committee2.ID},
		{name: "admin sees the draft", userID: testutil.Admin1.ID},
		{name: "student does not", userID: testutil.Student1.ID, wantErr: true},
		{name: "other committee does not", userID: testutil.Committee1.ID, wantErr: true},
		{name: "anonymous does not", userID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userCtx := testutil.MockContextWithUserID(ctx, tt.userID)
			resp, err := d.Get(userCtx, &model.GetEventRequest{ID: testutil.DraftEvent.ID})
			if tt.wantErr {
				require.True(t, errorx.Is(err, errorx.NotFound))
				return
			}

			require.NoError(t, err)
			require.Equal(t, testutil.DraftEvent.Title, resp.Title)
		})
	}
}

func Test_eventDomain_GetList(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestEventDomain(ctx, &testutil.MockStorage{})
	require.NoError(t, d.RebuildIndex(ctx))

	resp, err := d.GetList(ctx, &model.GetEventsRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{testutil.FreeEvent.ID, testutil.PaidEvent.ID}, eventIDs(resp.Events))

	resp, err = d.GetList(ctx, &model.GetEventsRequest{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []string{testutil.PaidEvent.ID}, eventIDs(resp.Events))

	resp, err = d.GetList(ctx, &model.GetEventsRequest{Q: "robotics"})
	require.NoError(t, err)
	require.Equal(t, []string{testutil.PaidEvent.ID}, eventIDs(resp.Events))

	// Draft events are never searchable.
	resp, err = d.GetList(ctx, &model.GetEventsRequest{Q: "hackathon"})
	require.NoError(t, err)
	require.Empty(t, resp.Events)

	_, err = d.GetList(ctx, &model.GetEventsRequest{Limit: 1000})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	mine, err := d.GetMyEvents(
		testutil.MockContextWithUserID(ctx, testutil.Committee2.ID),
		&model.GetMyEventsRequest{},
	)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.DraftEvent.ID}, eventIDs(mine.Events))
}

func Test_eventDomain_Update(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestEventDomain(ctx, &testutil.MockStorage{})
	require.NoError(t, d.RebuildIndex(ctx))

	ownerCtx := testutil.MockContextWithUserID(ctx, testutil.Committee1.ID)

	_, err := d.Update(
		testutil.MockContextWithUserID(ctx, testutil.Committee2.ID),
		&model.UpdateEventRequest{ID: testutil.PaidEvent.ID, EventInput: model.EventInput{Title: "Mine now"}},
	)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	price := int64(12000)
	resp, err := d.Update(ownerCtx, &model.UpdateEventRequest{
		ID: testutil.PaidEvent.ID,
		EventInput: model.EventInput{
			Title:    "Drone Workshop",
			PriceDuo: &price,
			Tiers:    []string{"duo"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Drone Workshop", resp.Title)
	require.Equal(t, testutil.PaidEvent.Venue, resp.Venue)
	require.Equal(t, int64(12000), *resp.PriceDuo)
	require.Equal(t, []string{"duo"}, resp.AllowedTiers)
	require.Nil(t, resp.Capacity)

	// The index follows the new title.
	found, err := d.GetList(ctx, &model.GetEventsRequest{Q: "drone"})
	require.NoError(t, err)
	require.Equal(t, []string{testutil.PaidEvent.ID}, eventIDs(found.Events))

	capacity := int64(5)
	resp, err = d.Update(ownerCtx, &model.UpdateEventRequest{
		ID:         testutil.PaidEvent.ID,
		EventInput: model.EventInput{Capacity: &capacity},
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), *resp.Capacity)

	resp, err = d.Update(ownerCtx, &model.UpdateEventRequest{ID: testutil.PaidEvent.ID, ClearCapacity: true})
	require.NoError(t, err)
	require.Nil(t, resp.Capacity)

	_, err = d.Update(ownerCtx, &model.UpdateEventRequest{
		ID:         testutil.PaidEvent.ID,
		EventInput: model.EventInput{EndTime: "2029-01-01T00:00:00Z"},
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	// Closing the event drops it from the catalog.
	_, err = d.Update(ownerCtx, &model.UpdateEventRequest{
		ID:         testutil.PaidEvent.ID,
		EventInput: model.EventInput{Status: "closed"},
	})
	require.NoError(t, err)

	found, err = d.GetList(ctx, &model.GetEventsRequest{Q: "drone"})
	require.NoError(t, err)
	require.Empty(t, found.Events)
}

func Test_eventDomain_Update_CapacityBelowIssued(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	eventRepo := repository.NewEventRepository()
	d := newTestEventDomain(ctx, &testutil.MockStorage{})

	ok, err := eventRepo.IncreaseIssued(ctx, testutil.FreeEvent.ID)
	require.NoError(t, err)
	require.True(t, ok)

	capacity := int64(0)
	_, err = d.Update(
		testutil.MockContextWithUserID(ctx, testutil.Committee1.ID),
		&model.UpdateEventRequest{ID: testutil.FreeEvent.ID, EventInput: model.EventInput{Capacity: &capacity}},
	)
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_eventDomain_Delete(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestEventDomain(ctx, &testutil.MockStorage{})

	_, err := d.Delete(
		testutil.MockContextWithUserID(ctx, testutil.Student1.ID),
		&model.DeleteEventRequest{ID: testutil.FreeEvent.ID},
	)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	adminCtx := testutil.MockContextWithUserID(ctx, testutil.Admin1.ID)
	_, err = d.Delete(adminCtx, &model.DeleteEventRequest{ID: testutil.FreeEvent.ID})
	require.NoError(t, err)

	_, err = d.Get(adminCtx, &model.GetEventRequest{ID: testutil.FreeEvent.ID})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func newMultipartRequest(t *testing.T, field, fileName string, data []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, size int) []byte {
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, size, size))))
	return buf.Bytes()
}

func Test_eventDomain_UploadPoster(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var uploaded []*storage.UploadObject
	fileStorage := &testutil.MockStorage{
		BulkUploadFunc: func(
			ctx context.Context, objs []*storage.UploadObject,
		) ([]*storage.UploadResponse, error) {
			uploaded = objs
			resp := []*storage.UploadResponse{}
			for _, o := range objs {
				resp = append(resp, &storage.UploadResponse{Url: "https://cdn.test/" + o.FileName, FileName: o.FileName})
			}
			return resp, nil
		},
	}
	d := newTestEventDomain(ctx, fileStorage)

	ownerCtx := testutil.MockContextWithUserID(ctx, testutil.Committee1.ID)

	// No file attached.
	_, err := d.UploadPoster(ownerCtx, &model.UploadEventPosterRequest{ID: testutil.PaidEvent.ID})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	req := newMultipartRequest(t, "image", "poster.png", pngBytes(t, 64))
	resp, err := d.UploadPoster(
		xcontext.WithHTTPRequest(ownerCtx, req),
		&model.UploadEventPosterRequest{ID: testutil.PaidEvent.ID},
	)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/poster.png", resp.URL)
	require.Len(t, uploaded, 1)
	require.Equal(t, "posters", uploaded[0].Prefix)

	event, err := d.Get(ownerCtx, &model.GetEventRequest{ID: testutil.PaidEvent.ID})
	require.NoError(t, err)
	require.Equal(t, resp.URL, event.PosterURL)
}
