package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	testutil "github.com/trezcool/capstone/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantData interface{}
}

func setup(t *testing.T) *testutil.Env {
	return testutil.Start(t)
}

func do(t *testing.T, env *testutil.Env, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, env.Server.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return send(t, req)
}

func doForm(t *testing.T, env *testutil.Env, path, token string, fields map[string][]string, file []byte) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, vals := range fields {
		for _, v := range vals {
			require.NoError(t, w.WriteField(name, v))
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("file", "spec.pdf")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, env.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return send(t, req)
}

func send(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := ioutil.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func runHTTPTests(t *testing.T, env *testutil.Env, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			code, data := do(t, env, tt.method, tt.path, tt.token, tt.body)
			if code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", code, tt.wantCode, data)
			}
			if tt.wantData == nil {
				return
			}
			want, err := json.Marshal(tt.wantData)
			require.NoError(t, err)
			ok, err := jsonBytesEqual(data, want)
			if err != nil {
				t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
			}
			if !ok {
				t.Errorf("failed! data = %v; wantData %v", string(data), string(want))
			}
		})
	}
}

func decode(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v), string(data))
}
