package app

import (
	"context"
	"errors"

	"github.com/edumetric-labs/edumetric/internal/alertrules"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Alert texts.
const (
	AlertSentMessage = "Mentor alert sent successfully!"
	AlertNetworkFail = "Failed to send alert due to network error."
)

var (
	// ErrNoStudent is returned by alert and export operations before any
	// student was analysed.
	ErrNoStudent = errors.New("no student analysed yet")
	// ErrNoMentor is returned when no mentor address is known.
	ErrNoMentor = errors.New("no mentor email configured")
)

var alertFailure = failure{
	app:     func(msg string) string { return "Failed to send alert: " + withDefault(msg, "Unknown error") },
	network: AlertNetworkFail,
}

// OpenAlert assesses the analysed student and shows the alert modal.
func (c *Controller) OpenAlert() (*alertrules.Assessment, error) {
	c.mu.Lock()
	res := c.data.student
	c.mu.Unlock()
	if res == nil {
		c.raise(Notice{Kind: NoticeError, Message: "Analyse a student before sending an alert."})
		return nil, ErrNoStudent
	}

	a := c.alerts.Assess(res.Predictions, res.Features)
	c.mu.Lock()
	c.data.alert = &a
	err := c.views.OpenModal(viewstate.ModalAlert)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c.changed()
	return &a, nil
}

// CloseAlert hides the alert modal.
func (c *Controller) CloseAlert() {
	c.mu.Lock()
	c.data.alert = nil
	_ = c.views.CloseModal(viewstate.ModalAlert)
	c.mu.Unlock()
	c.changed()
}

// MentorEmail returns the address alerts for the analysed student go to.
func (c *Controller) MentorEmail() string {
	if c.mentorEmail != "" {
		return c.mentorEmail
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data.student == nil {
		return ""
	}
	return c.data.student.Student.MentorEmail.String()
}

// SendAlert emails the mentor about the analysed student.
func (c *Controller) SendAlert(ctx context.Context) (string, error) {
	c.mu.Lock()
	res := c.data.student
	c.mu.Unlock()
	if res == nil {
		c.raise(Notice{Kind: NoticeError, Message: "Analyse a student before sending an alert."})
		return "", ErrNoStudent
	}
	email := c.MentorEmail()
	if email == "" {
		c.raise(Notice{Kind: NoticeError, Message: "Failed to send alert: no mentor email configured"})
		return "", ErrNoMentor
	}

	tok, h := c.begin(slotAlert, "Sending alert...")
	defer h.Release()

	msg, err := c.api.SendAlert(ctx, core.AlertRequest{
		Email:       email,
		Student:     res.Student,
		Predictions: res.Predictions,
		Features:    res.Features,
	})
	if err != nil {
		return "", c.failed(slotAlert, tok, err, alertFailure)
	}
	err = c.settle(slotAlert, tok, func(d *data) {
		d.alert = nil
		_ = c.views.CloseModal(viewstate.ModalAlert)
	})
	if err != nil {
		return "", err
	}
	c.raise(Notice{Kind: NoticeSuccess, Message: AlertSentMessage})
	return msg, nil
}
