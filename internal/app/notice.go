package app

import (
	"errors"

	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// NoticeKind classifies a notice.
type NoticeKind string

// Notice kinds.
const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
)

// NetworkMessage is the generic transport failure text.
const NetworkMessage = "Network error occurred. Please check your connection and try again."

// Notice is a blocking message the user must dismiss.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// failure chooses notice texts for one operation.
type failure struct {
	// app formats a server-reported message. Nil shows the message itself,
	// or fallback when the server sent none.
	app      func(msg string) string
	fallback string
	// network is shown for every non-application failure.
	network string
}

func (f failure) notice(err error) Notice {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return Notice{Kind: NoticeError, Message: verr.Error()}
	}

	if msg, ok := apiclient.ServerMessage(err); ok {
		if f.app != nil {
			return Notice{Kind: NoticeError, Message: f.app(msg)}
		}
		if msg == "" {
			msg = f.fallback
		}
		if msg == "" {
			msg = "Request failed."
		}
		return Notice{Kind: NoticeError, Message: msg}
	}

	if f.network == "" {
		return Notice{Kind: NoticeError, Message: NetworkMessage}
	}
	return Notice{Kind: NoticeError, Message: f.network}
}

// raise shows n in the notice modal, replacing any earlier notice.
func (c *Controller) raise(n Notice) {
	c.mu.Lock()
	c.data.notice = &n
	err := c.views.OpenModal(viewstate.ModalNotice)
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn("failed to open notice", "error", err)
	}
	c.changed()
}

// invalid raises a notice for a rejected input and returns err.
func (c *Controller) invalid(err error) error {
	c.raise(failure{}.notice(err))
	return err
}

// Reject raises an error notice for input the caller could not parse and
// returns err.
func (c *Controller) Reject(err error) error {
	c.raise(Notice{Kind: NoticeError, Message: "Invalid input: " + err.Error()})
	return err
}

// DismissNotice closes the notice modal.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	had := c.data.notice != nil
	c.data.notice = nil
	_ = c.views.CloseModal(viewstate.ModalNotice)
	c.mu.Unlock()
	if had {
		c.changed()
	}
}

func withDefault(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
