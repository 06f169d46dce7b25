// Package pages composes list views, modals and direct calls into the pages of the client.
package pages

import (
	"context"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/gateway"
)

// API is the part of *gateway.Client the pages need.
type API interface {
	gateway.Caller
	Upload(ctx context.Context, req gateway.Request, fields map[string][]string, file *gateway.File) (gateway.Payload, error)
	Download(ctx context.Context, req gateway.Request) ([]byte, error)
}

var _ API = (*gateway.Client)(nil)

type Deps struct {
	API        API
	Session    session.Reader
	Validate   *validator.Validate
	Translator ut.Translator
}

func (d Deps) request(method, path string, body interface{}) gateway.Request {
	return gateway.Request{
		Method:       method,
		Path:         path,
		Body:         body,
		Token:        d.Session.Token(),
		RequiresAuth: true,
	}
}

func (d Deps) get(ctx context.Context, path string, v interface{}) error {
	payload, err := d.API.Do(ctx, d.request(http.MethodGet, path, nil))
	if err != nil {
		return err
	}
	return payload.Decode(v)
}

func itoa(i int) string { return strconv.Itoa(i) }
