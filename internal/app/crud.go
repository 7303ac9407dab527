package app

import (
	"context"
	"strings"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

func crudFailure(verb string) failure {
	return failure{
		app:     func(msg string) string { return "ERROR: Failed to " + verb + " student: " + withDefault(msg, "Unknown error") },
		network: "ERROR: Failed to " + verb + " student due to network error.",
	}
}

// CreateStudent adds a new record.
func (c *Controller) CreateStudent(ctx context.Context, s core.Student) (string, error) {
	if err := s.Validate(); err != nil {
		return "", c.invalid(err)
	}

	tok, h := c.begin(slotCRUD, "Creating student...")
	defer h.Release()

	msg, err := c.api.CreateStudent(ctx, s)
	if err != nil {
		return "", c.failed(slotCRUD, tok, err, crudFailure("create"))
	}
	msg = withDefault(msg, "Student created successfully")
	if err := c.settle(slotCRUD, tok, func(d *data) {
		d.crud = CRUDView{Op: CRUDCreate, Message: msg}
	}); err != nil {
		return "", err
	}
	c.raise(Notice{Kind: NoticeSuccess, Message: msg})
	return msg, nil
}

// ReadStudents searches by register number or name.
func (c *Controller) ReadStudents(ctx context.Context, rno, name string) (*core.ReadResult, error) {
	rno, name = strings.TrimSpace(rno), strings.TrimSpace(name)
	if rno == "" && name == "" {
		return nil, c.invalid(&core.ValidationError{Field: "rno", Message: "or name is required"})
	}

	tok, h := c.begin(slotCRUD, "Searching students...")
	defer h.Release()

	res, err := c.api.ReadStudents(ctx, rno, name)
	if err != nil {
		return nil, c.failed(slotCRUD, tok, err, failure{network: "ERROR: Failed to search students due to network error."})
	}
	return res, c.settle(slotCRUD, tok, func(d *data) {
		d.crud = CRUDView{Op: CRUDRead, Students: res.Students}
	})
}

// FetchStudent loads a record into the update or delete form.
func (c *Controller) FetchStudent(ctx context.Context, op CRUDOp, rno string) (*core.Student, error) {
	rno = strings.TrimSpace(rno)
	if rno == "" {
		return nil, c.invalid(&core.ValidationError{Field: "rno", Message: "is required"})
	}

	tok, h := c.begin(slotCRUD, "Fetching student details...")
	defer h.Release()

	s, err := c.api.SearchStudent(ctx, rno)
	if err != nil {
		return nil, c.failed(slotCRUD, tok, err, failure{network: "Failed to fetch student details."})
	}
	return s, c.settle(slotCRUD, tok, func(d *data) {
		d.crud = CRUDView{Op: op, Selected: s}
	})
}

// UpdateStudent saves changes to an existing record.
func (c *Controller) UpdateStudent(ctx context.Context, s core.Student) (*core.Student, error) {
	if err := s.Validate(); err != nil {
		return nil, c.invalid(err)
	}

	tok, h := c.begin(slotCRUD, "Updating student...")
	defer h.Release()

	updated, err := c.api.UpdateStudent(ctx, s)
	if err != nil {
		return nil, c.failed(slotCRUD, tok, err, crudFailure("update"))
	}
	if updated == nil {
		updated = &s
	}
	msg := "Student " + updated.RNO.String() + " updated successfully"
	if err := c.settle(slotCRUD, tok, func(d *data) {
		d.crud = CRUDView{Op: CRUDUpdate, Message: msg, Selected: updated}
	}); err != nil {
		return nil, err
	}
	c.raise(Notice{Kind: NoticeSuccess, Message: msg})
	return updated, nil
}

// DeleteStudent removes a record.
func (c *Controller) DeleteStudent(ctx context.Context, rno string) (*core.Student, error) {
	rno = strings.TrimSpace(rno)
	if rno == "" {
		return nil, c.invalid(&core.ValidationError{Field: "rno", Message: "is required"})
	}

	tok, h := c.begin(slotCRUD, "Deleting student...")
	defer h.Release()

	deleted, err := c.api.DeleteStudent(ctx, rno)
	if err != nil {
		return nil, c.failed(slotCRUD, tok, err, crudFailure("delete"))
	}
	msg := "Student " + rno + " deleted successfully"
	if err := c.settle(slotCRUD, tok, func(d *data) {
		d.crud = CRUDView{Op: CRUDDelete, Message: msg}
	}); err != nil {
		return nil, err
	}
	c.raise(Notice{Kind: NoticeSuccess, Message: msg})
	return deleted, nil
}
