package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// A slash command invocation ends in exactly one of two ways: an immediate
// reply, or a defer followed by one follow-up. Responder tracks which phase
// an invocation is in and refuses out-of-order or duplicate terminal sends.
type replyState int

const (
	stateFresh replyState = iota
	stateDeferred
	stateReplied
)

var (
	ErrAlreadyReplied  = errors.New("responder: terminal reply already sent")
	ErrAlreadyDeferred = errors.New("responder: cannot reply immediately after deferring")
	ErrNotDeferred     = errors.New("responder: follow-up requires a prior defer")
)

// Responder delivers ephemeral replies for a single slash command invocation
// through its response_url. It is used by one goroutine per invocation and
// is not safe for concurrent use.
type Responder struct {
	responseURL string
	httpClient  *http.Client
	state       replyState
}

// NewResponder returns a Responder bound to the invocation's response_url.
// Slack keeps the URL valid for 30 minutes, far beyond any single
// invocation's lifetime.
func NewResponder(responseURL string) *Responder {
	return &Responder{
		responseURL: responseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ReplyImmediately sends the terminal message without deferring first. Only
// valid as the first and only reply of the invocation.
func (r *Responder) ReplyImmediately(text string) error {
	switch r.state {
	case stateReplied:
		return ErrAlreadyReplied
	case stateDeferred:
		return ErrAlreadyDeferred
	}
	r.state = stateReplied
	return r.post(text)
}

// Defer marks that the terminal reply will arrive later as a follow-up. The
// empty 200 already returned to Slack is the wire-level acknowledgment, so
// no message is sent here; Defer must still precede any slow work so the
// lifecycle mirrors what the user experiences.
func (r *Responder) Defer() error {
	switch r.state {
	case stateReplied:
		return ErrAlreadyReplied
	case stateDeferred:
		return ErrAlreadyDeferred
	}
	r.state = stateDeferred
	return nil
}

// FollowUp sends the terminal message after a Defer.
func (r *Responder) FollowUp(text string) error {
	switch r.state {
	case stateReplied:
		return ErrAlreadyReplied
	case stateFresh:
		return ErrNotDeferred
	}
	r.state = stateReplied
	return r.post(text)
}

func (r *Responder) post(text string) error {
	msg, err := json.Marshal(map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
	if err != nil {
		return fmt.Errorf("encoding reply: %w", err)
	}

	resp, err := r.httpClient.Post(r.responseURL, "application/json", bytes.NewReader(msg))
	if err != nil {
		return fmt.Errorf("posting reply: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("response_url returned status %d", resp.StatusCode)
	}
	return nil
}
