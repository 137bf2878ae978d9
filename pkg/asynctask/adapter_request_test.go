package asynctask

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRequest is a minimal Request double: calling resolve/reject runs
// whatever Then callbacks were registered, and Abort just records its
// reason for assertions.
type fakeRequest struct {
	resolve func(value any)
	reject  func(err error)

	aborted    bool
	abortedFor any
}

func (r *fakeRequest) Then(resolve func(value any), reject func(err error)) {
	r.resolve, r.reject = resolve, reject
}

func (r *fakeRequest) Abort(reason any) error {
	r.aborted = true
	r.abortedFor = reason
	return nil
}

func TestRequestResolveCompletesLink(t *testing.T) {
	m, _ := newTestManager()
	req := &fakeRequest{}

	var got Result
	_, err := m.setAsync(linkSpec{
		kind: KindRequest,
		start: func(link *Link) (any, any, error) {
			link.addOnComplete(func(r Result) { got = r })
			req.Then(
				func(v any) { m.completeOnce(link, Result{Value: v}) },
				func(err error) { m.completeOnce(link, Result{Err: err}) },
			)
			return req, req, nil
		},
		destroy: abortRequestDestroy,
	})
	require.NoError(t, err)

	req.resolve("payload")
	assert.Equal(t, "payload", got.Value)
}

func TestRequestAbortOnClearReplace(t *testing.T) {
	m, _ := newTestManager()
	req := &fakeRequest{}

	_, err := m.SetRequest(req, Options{Label: "lookup"})
	require.NoError(t, err)

	secondReq := &fakeRequest{}
	secondID, err := m.SetRequest(secondReq, Options{Label: "lookup", Join: JoinReplace})
	require.NoError(t, err)

	assert.True(t, req.aborted)
	assert.Equal(t, secondID, req.abortedFor)
}

func TestFromRequestRejectsOnError(t *testing.T) {
	m, _ := newTestManager()
	req := &fakeRequest{}

	fut, err := m.FromRequest(req, Options{})
	require.NoError(t, err)

	wantErr := errors.New("boom")
	req.reject(wantErr)

	val, gotErr := fut.Await(context.Background())
	assert.Nil(t, val)
	assert.ErrorIs(t, gotErr, wantErr)
}
