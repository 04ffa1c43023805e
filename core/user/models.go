package user

import (
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/navigation"
)

// Roles
const (
	// Admins
	RoleAdmin          = "admin:"
	RoleAdminBranch    = "admin:branch"
	RoleAdminSubBranch = "admin:subbranch"

	// Staff
	RoleCurriculum = "curriculum:"
	RoleMunaqisy   = "munaqisy:"
	RoleTeacher    = "teacher:"

	// Student
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminBranch, RoleAdminSubBranch}
	StaffRoles   = []string{RoleCurriculum, RoleMunaqisy, RoleTeacher}
	StudentRoles = []string{RoleStudent}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdmin:          30,
		RoleAdminBranch:    25,
		RoleAdminSubBranch: 21,

		// Staff: 20 - 11
		RoleCurriculum: 15,
		RoleMunaqisy:   13,
		RoleTeacher:    11,

		// Students: 10 - 1
		RoleStudent: 1,
	}

	navRoles = map[string]navigation.Role{
		RoleAdmin:          navigation.RoleAdmin,
		RoleAdminBranch:    navigation.RoleBranchAdmin,
		RoleAdminSubBranch: navigation.RoleSubBranchAdmin,
		RoleCurriculum:     navigation.RoleCurriculum,
		RoleMunaqisy:       navigation.RoleMunaqisy,
		RoleTeacher:        navigation.RoleTeacher,
		RoleStudent:        navigation.RoleStudent,
	}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Munaqisy", Value: RoleMunaqisy},
		{Name: "Curriculum", Value: RoleCurriculum},
		{Name: "Sub-branch Admin", Value: RoleAdminSubBranch},
		{Name: "Branch Admin", Value: RoleAdminBranch},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 7)
	all = append(all, AdminRoles...)
	all = append(all, StaffRoles...)
	all = append(all, StudentRoles...)
	sort.Strings(all)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     *bool     `json:"is_active"`
	Roles        []string  `json:"roles"`
	BranchID     string    `json:"branch_id,omitempty"`
	SubBranchID  string    `json:"sub_branch_id,omitempty"`
	ClassIDs     []string  `json:"class_ids,omitempty"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsTeacher() bool {
	return u.RoleStartsWith(RoleTeacher)
}

func (u *User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

func (u *User) IsMunaqisy() bool {
	return u.RoleStartsWith(RoleMunaqisy)
}

// PrimaryRole maps the user's highest-priority role string onto the
// navigation role that selects their route table and shell.
func (u *User) PrimaryRole() navigation.Role {
	var top string
	var topPriority int
	for _, role := range u.Roles {
		if p := RolePriority(role); p > topPriority {
			top, topPriority = role, p
		}
	}
	if nav, ok := navRoles[top]; ok {
		return nav
	}
	return navigation.RoleGuest
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	BranchID        string   `json:"branch_id" validate:"omitempty,uuid4"`
	SubBranchID     string   `json:"sub_branch_id" validate:"omitempty,uuid4"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	BranchID        string   `json:"branch_id" validate:"omitempty,uuid4"`
	SubBranchID     string   `json:"sub_branch_id" validate:"omitempty,uuid4"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate, origUsr User, svc ServiceInterface) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Username, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	BranchID    string    `query:"branch_id"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil &&
		qf.BranchID == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
