// Package listview implements the load, filter and reload cycle shared by every list page.
package listview

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/gateway"
)

type State int

const (
	Empty State = iota
	Loading
	Loaded
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return "unknown"
}

var (
	// ErrLoadInFlight is returned by Load while a previous load has not completed. Nothing was fetched.
	ErrLoadInFlight = errors.New("listview: load already in flight")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("listview: closed")
)

// Fetcher returns the full list. A nil list is treated as empty.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Fields returns the searchable fields of an item.
type Fields[T any] func(item T) []string

// Endpoint fetches the list served at path with the session token.
// path is evaluated on every load so it can follow a filter such as the selected course.
func Endpoint[T any](caller gateway.Caller, sess session.Reader, path func() string) Fetcher[T] {
	return func(ctx context.Context) ([]T, error) {
		payload, err := caller.Do(ctx, gateway.Request{
			Method:       "GET",
			Path:         path(),
			Token:        sess.Token(),
			RequiresAuth: true,
		})
		if err != nil {
			return nil, err
		}
		return gateway.DecodeList[T](payload), nil
	}
}

// Controller holds the last loaded list of a page and the filtered view of it.
type Controller[T any] struct {
	fetch  Fetcher[T]
	fields Fields[T]

	mu     sync.Mutex
	state  State
	source []T
	term   string
	view   []T
	err    error
	closed bool
}

func New[T any](fetch Fetcher[T], fields Fields[T]) *Controller[T] {
	return &Controller[T]{
		fetch:  fetch,
		fields: fields,
		source: []T{},
		view:   []T{},
	}
}

// Load fetches the full list, replaces the source and resets the filter.
// A failed fetch leaves an empty list and is returned so the caller can alert the user.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == Loading {
		c.mu.Unlock()
		return ErrLoadInFlight
	}
	c.state = Loading
	c.mu.Unlock()

	items, err := c.fetch(ctx)
	if err != nil || items == nil {
		items = []T{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.source = items
	c.term = ""
	c.view = items
	c.err = err
	c.state = Loaded
	return err
}

// Filter narrows the view to the items whose fields contain term, ignoring case.
// It never fetches and never changes the source list.
func (c *Controller[T]) Filter(term string) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term = term
	c.view = Match(c.source, c.term, c.fields)
	return clone(c.view)
}

// Clear resets the filter and reloads.
func (c *Controller[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.term = ""
	c.view = c.source
	c.mu.Unlock()
	return c.Load(ctx)
}

// Reload is Load without a result, usable as a modal reload callback.
func (c *Controller[T]) Reload(ctx context.Context) {
	_ = c.Load(ctx)
}

// Close discards any result arriving afterwards.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Items returns the current view.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.view)
}

// Source returns the last loaded list.
func (c *Controller[T]) Source() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.source)
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller[T]) Term() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term
}

// Err returns the error of the last load, if any.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Match returns the subsequence of items with a field containing term, ignoring case.
// An empty term matches everything.
func Match[T any](items []T, term string, fields Fields[T]) []T {
	out := make([]T, 0, len(items))
	needle := strings.ToLower(term)
	for _, item := range items {
		if needle == "" || matches(fields(item), needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
