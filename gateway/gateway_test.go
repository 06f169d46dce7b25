package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, auth, requestID, contentType string
	body                                       []byte
}

func setup(t *testing.T, status int, respBody string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{
			method:      r.Method,
			path:        r.URL.RequestURI(),
			auth:        r.Header.Get("Authorization"),
			requestID:   r.Header.Get(requestIDHeader),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, time.Second), &calls
}

func TestCall(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		respBody    string
		token       string
		requires    bool
		body        interface{}
		wantPayload string
		wantKind    Kind
		wantMsg     string
		wantCalls   int
	}{
		{
			name: "success list", status: 200, respBody: `[{"userId":1}]`,
			token: "tok", requires: true, wantPayload: `[{"userId":1}]`, wantCalls: 1,
		},
		{
			name: "domain error with 200", status: 200, respBody: `{"error":"invalid role"}`,
			token: "tok", requires: true, wantKind: KindDomain, wantMsg: "invalid role", wantCalls: 1,
		},
		{
			name: "domain error with 401", status: 401, respBody: `{"error":"unauthorized"}`,
			token: "tok", requires: true, wantKind: KindDomain, wantMsg: "unauthorized", wantCalls: 1,
		},
		{
			name: "status error", status: 500, respBody: ``,
			token: "tok", wantKind: KindStatus, wantMsg: "Request failed: Internal Server Error", wantCalls: 1,
		},
		{
			name: "missing token", status: 200, respBody: `[]`,
			requires: true, wantKind: KindMissingToken, wantMsg: msgMissingToken, wantCalls: 0,
		},
		{
			name: "anonymous call", status: 200, respBody: `{"msg":"ok"}`,
			wantPayload: `{"msg":"ok"}`, wantCalls: 1,
		},
		{
			name: "empty success", status: 200, respBody: ``,
			token: "tok", wantPayload: `null`, wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := setup(t, tt.status, tt.respBody)
			got, err := c.Call(context.Background(), http.MethodGet, "v1/user/get/user/list", tt.body, tt.token, tt.requires)
			assert.Len(t, *calls, tt.wantCalls)
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.True(t, IsKind(err, tt.wantKind), "kind = %v", err)
				assert.Equal(t, tt.wantMsg, Message(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantPayload, string(got))
		})
	}
}

func TestCallRequestShape(t *testing.T) {
	c, calls := setup(t, 200, `{"msg":"ok"}`)
	body := map[string]interface{}{"userId": 7, "role": 4}
	_, err := c.Call(context.Background(), http.MethodPost, "/v1/admin/modify/user/role", body, "tok", true)
	require.NoError(t, err)
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/v1/admin/modify/user/role", call.path)
	assert.Equal(t, "Bearer tok", call.auth)
	assert.NotEmpty(t, call.requestID)
	assert.Equal(t, "application/json", call.contentType)
	assert.JSONEq(t, `{"userId":7,"role":4}`, string(call.body))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second)
	_, err := c.Call(context.Background(), http.MethodGet, "v1/project/get/public_project/list", nil, "", false)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransport))
	assert.Equal(t, msgTransport, Message(err))
}

func TestSingleAttempt(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Call(context.Background(), http.MethodGet, "x", nil, "", false)
	assert.True(t, IsKind(err, KindStatus))
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestUpload(t *testing.T) {
	var gotFile, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotTitle = r.FormValue("title")
		f, _, err := r.FormFile("file")
		if err == nil {
			b, _ := io.ReadAll(f)
			gotFile = string(b)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "ok"})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Upload(context.Background(),
		Request{Path: "v1/project/upload/spec/1", Token: "tok", RequiresAuth: true},
		map[string][]string{"title": {"Chatbot"}},
		&File{Name: "spec.pdf", Content: strings.NewReader("%PDF-1.4")},
	)
	require.NoError(t, err)
	assert.Equal(t, "Chatbot", gotTitle)
	assert.Equal(t, "%PDF-1.4", gotFile)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/missing.pdf" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"file not found"}`)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.4 data")
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	got, err := c.Download(context.Background(), Request{Path: srv.URL + "/files/spec.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 data", string(got))

	_, err = c.Download(context.Background(), Request{Path: "files/missing.pdf"})
	assert.True(t, IsKind(err, KindDomain))
	assert.Equal(t, "file not found", Message(err))
}

func TestDecodeList(t *testing.T) {
	type item struct {
		ID int `json:"id"`
	}
	tests := []struct {
		name    string
		payload Payload
		want    []item
	}{
		{name: "array", payload: Payload(`[{"id":1},{"id":2}]`), want: []item{{ID: 1}, {ID: 2}}},
		{name: "empty array", payload: Payload(`[]`), want: []item{}},
		{name: "null", payload: Payload(`null`), want: []item{}},
		{name: "object", payload: Payload(`{"id":1}`), want: []item{}},
		{name: "nil", payload: nil, want: []item{}},
		{name: "wrong shape", payload: Payload(`["a"]`), want: []item{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeList[item](tt.payload)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}
