package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/partsegnet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testArtifact = Artifact{Network: "seg", Kind: KindPrototxt, Data: []byte("name: \"seg\"\n")}

type recordingSink struct {
	got []Artifact
	err error
}

func (r *recordingSink) Publish(_ context.Context, a Artifact) error {
	r.got = append(r.got, a)
	return r.err
}

func TestStdout(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	var buf bytes.Buffer
	require.NoError(t, (&Stdout{W: &buf}).Publish(ctx, testArtifact))
	assert.Equal(t, "name: \"seg\"\n", buf.String())
}

func TestFile(t *testing.T) {
	ctx, logs := testutil.LogContext(t)
	path := filepath.Join(t.TempDir(), "nested", "dir", "seg.prototxt")

	require.NoError(t, (&File{Path: path}).Publish(ctx, testArtifact))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testArtifact.Data, got)
	testutil.AssertLogged(t, logs, "Wrote artifact.", path)
}

func TestUpload(t *testing.T) {
	testCases := []struct {
		name        string
		kind        string
		status      int
		wantErr     string
		wantType    string
		wantPayload string
	}{
		{name: "prototxt", kind: KindPrototxt, status: http.StatusOK, wantType: "text/plain"},
		{name: "html", kind: KindHTML, status: http.StatusOK, wantType: "text/html"},
		{name: "rejected", kind: KindPrototxt, status: http.StatusForbidden, wantType: "text/plain", wantErr: "403"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.LogContext(t)

			var method, contentType string
			var body []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				contentType = r.Header.Get("Content-Type")
				body, _ = io.ReadAll(r.Body)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			a := testArtifact
			a.Kind = tc.kind
			err := (&Upload{URL: srv.URL + "/bucket/seg.prototxt?sig=abc"}).Publish(ctx, a)

			assert.Equal(t, http.MethodPut, method)
			assert.Equal(t, tc.wantType, contentType)
			assert.Equal(t, a.Data, body)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUpload_BadURL(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	err := (&Upload{URL: "://nope"}).Publish(ctx, testArtifact)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create upload request")
}

func TestMulti_StopsAtFirstError(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	boom := errors.New("boom")
	first := &recordingSink{}
	failing := &recordingSink{err: boom}
	never := &recordingSink{}

	err := Multi{first, failing, never}.Publish(ctx, testArtifact)

	require.ErrorIs(t, err, boom)
	assert.Len(t, first.got, 1)
	assert.Len(t, failing.got, 1)
	assert.Empty(t, never.got)
}

func TestSocketIO_InvalidURL(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	err := (&SocketIO{URL: "localhost:3000"}).Publish(ctx, testArtifact)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a scheme and a host")
}

func TestSocketIO_ConnectFailure(t *testing.T) {
	ctx, _ := testutil.LogContext(t)

	// A plain HTTP server that never speaks engine.io.
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	start := time.Now()
	err := (&SocketIO{URL: srv.URL, Timeout: 2 * time.Second}).Publish(ctx, testArtifact)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}
