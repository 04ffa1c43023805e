package academic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/markazhub/markaz/core"
)

// Branch year lifecycle
const (
	YearDraft  = "draft"
	YearActive = "active"
	YearClosed = "closed"
)

type (
	Branch struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Address   string    `json:"address,omitempty"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	SubBranch struct {
		ID       string `json:"id"`
		BranchID string `json:"branch_id"`
		Name     string `json:"name"`
	}

	Class struct {
		ID           string `json:"id"`
		BranchYearID string `json:"branch_year_id"`
		SubBranchID  string `json:"sub_branch_id,omitempty"`
		Name         string `json:"name"`
		TeacherID    string `json:"teacher_id,omitempty"`
	}

	// BranchYear is one academic period of a branch. At most one may be
	// active per branch at a time.
	BranchYear struct {
		ID        string     `json:"id"`
		BranchID  string     `json:"branch_id"`
		Name      string     `json:"name"` // e.g. "1446/1447"
		Status    string     `json:"status"`
		StartsAt  time.Time  `json:"starts_at"`
		EndsAt    time.Time  `json:"ends_at"`
		ClosedAt  *time.Time `json:"closed_at,omitempty"`
		CreatedAt time.Time  `json:"created_at"` // UTC
	}

	// AttendanceSession is one scannable meeting of a class.
	AttendanceSession struct {
		ID       string    `json:"id"`
		ClassID  string    `json:"class_id"`
		Topic    string    `json:"topic,omitempty"`
		HeldAt   time.Time `json:"held_at"`
		OpenedBy string    `json:"opened_by"`
	}

	// AttendanceRecord is one student's scan in a session. Re-scans are
	// idempotent: one record per (session, student).
	AttendanceRecord struct {
		SessionID string    `json:"session_id"`
		StudentID string    `json:"student_id"`
		ScannedAt time.Time `json:"scanned_at"`
	}
)

type NewBranchYear struct {
	BranchID string    `json:"branch_id" validate:"required,uuid4"`
	Name     string    `json:"name" validate:"required"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

func (ny *NewBranchYear) Validate(validate *validator.Validate) error {
	ny.Name = core.CleanString(ny.Name)
	return validate.Struct(ny)
}

type NewClass struct {
	BranchYearID string `json:"branch_year_id" validate:"required,uuid4"`
	SubBranchID  string `json:"sub_branch_id" validate:"omitempty,uuid4"`
	Name         string `json:"name" validate:"required"`
	TeacherID    string `json:"teacher_id" validate:"omitempty,uuid4"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type NewAttendanceSession struct {
	ClassID string    `json:"class_id" validate:"required,uuid4"`
	Topic   string    `json:"topic"`
	HeldAt  time.Time `json:"held_at" validate:"required"`
}

func (ns *NewAttendanceSession) Validate(validate *validator.Validate) error {
	ns.Topic = core.CleanString(ns.Topic)
	return validate.Struct(ns)
}

// ScanPayload is what a student QR code decodes to.
type ScanPayload struct {
	SessionID string `json:"session_id" validate:"required,uuid4"`
	StudentID string `json:"student_id" validate:"required,uuid4"`
}

func (sp ScanPayload) Validate(validate *validator.Validate) error {
	return validate.Struct(sp)
}
