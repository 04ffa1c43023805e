package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/markazhub/markaz/core"
)

// Statuses
const (
	StatusActive    = "active"
	StatusGraduated = "graduated"
	StatusInactive  = "inactive"
)

var AllStatuses = []string{StatusActive, StatusGraduated, StatusInactive}

type Student struct {
	ID          string    `json:"id"`
	NIS         string    `json:"nis"` // institution-issued student number
	Name        string    `json:"name"`
	BranchID    string    `json:"branch_id"`
	SubBranchID string    `json:"sub_branch_id,omitempty"`
	ClassIDs    []string  `json:"class_ids,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (s *Student) IsEnrolledIn(classID string) bool {
	for _, id := range s.ClassIDs {
		if id == classID {
			return true
		}
	}
	return false
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	NIS         string `json:"nis" validate:"required"`
	Name        string `json:"name" validate:"required"`
	BranchID    string `json:"branch_id" validate:"required,uuid4"`
	SubBranchID string `json:"sub_branch_id" validate:"omitempty,uuid4"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc ServiceInterface) error {
	ns.NIS = core.CleanNIS(ns.NIS)
	ns.Name = core.CleanString(ns.Name)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckNISUniqueness(ns.NIS)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name        string `json:"name"`
	SubBranchID string `json:"sub_branch_id" validate:"omitempty,uuid4"`
	Status      string `json:"status" validate:"omitempty,studentstatus"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate, orig Student) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if us.Status == "" {
		us.Status = orig.Status
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	Search      string `query:"search"`
	BranchID    string `query:"branch_id"`
	SubBranchID string `query:"sub_branch_id"`
	ClassID     string `query:"class_id"`
	Status      string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.BranchID == "" && qf.SubBranchID == "" &&
		qf.ClassID == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
