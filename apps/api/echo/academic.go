package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/academic"
	"github.com/markazhub/markaz/core/student"
	"github.com/markazhub/markaz/core/user"
)

type academicApi struct {
	svc        *academic.Service
	studentSvc student.ServiceInterface
	validate   *validator.Validate
}

func registerAcademicAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *academic.Service,
	studentSvc student.ServiceInterface,
	validate *validator.Validate,
) {
	api := academicApi{svc: svc, studentSvc: studentSvc, validate: validate}

	bg := g.Group("/branches", jwt)
	bg.POST("", api.createBranch, adminMiddleware(user.RoleAdmin))
	bg.GET("", api.queryBranches, adminMiddleware())
	bg.GET("/:id/years", api.queryYears, adminMiddleware())

	yg := g.Group("/years", jwt, adminMiddleware())
	yg.POST("", api.createYear)
	yg.GET("/:id", api.retrieveYear)
	yg.POST("/:id/activate", api.activateYear)
	yg.POST("/:id/close", api.closeYear)
	yg.GET("/:id/classes", api.queryClasses)

	cg := g.Group("/classes", jwt)
	cg.POST("", api.createClass, adminMiddleware())
	cg.GET("/:id", api.retrieveClass, teacherOrAdminMiddleware())

	ag := g.Group("/attendance", jwt, teacherOrAdminMiddleware())
	ag.POST("/sessions", api.openSession)
	ag.GET("/sessions/:id", api.querySessionRecords)
	ag.POST("/scan", api.recordScan)
}

type BranchRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

func (br *BranchRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(br)
}

func (api *academicApi) createBranch(ctx echo.Context) error {
	var data BranchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BranchRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	br, err := api.svc.CreateBranch(ctx.Request().Context(), data.Name, data.Address)
	if err != nil {
		return errors.Wrap(err, "creating branch")
	}
	return ctx.JSON(http.StatusCreated, br)
}

func (api *academicApi) queryBranches(ctx echo.Context) error {
	branches, err := api.svc.QueryBranches(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying branches")
	}
	if branches == nil {
		branches = []academic.Branch{}
	}
	return ctx.JSON(http.StatusOK, branches)
}

func (api *academicApi) createYear(ctx echo.Context) error {
	var data academic.NewBranchYear
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBranchYear")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	by, err := api.svc.CreateYear(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrBranchNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "branch_id", Error: "unknown branch"})
		}
		return errors.Wrap(err, "creating branch year")
	}
	return ctx.JSON(http.StatusCreated, by)
}

func (api *academicApi) retrieveYear(ctx echo.Context) error {
	by, err := api.svc.GetYear(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrYearNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding branch year")
	}
	return ctx.JSON(http.StatusOK, by)
}

func (api *academicApi) queryYears(ctx echo.Context) error {
	years, err := api.svc.QueryYears(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying branch years")
	}
	if years == nil {
		years = []academic.BranchYear{}
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *academicApi) activateYear(ctx echo.Context) error {
	by, err := api.svc.ActivateYear(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		switch errors.Cause(err) {
		case academic.ErrYearNotFound:
			return errHttpNotFound
		case academic.ErrYearNotDraft, academic.ErrActiveYearBusy:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "activating branch year")
	}
	return ctx.JSON(http.StatusOK, by)
}

func (api *academicApi) closeYear(ctx echo.Context) error {
	by, err := api.svc.CloseYear(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		switch errors.Cause(err) {
		case academic.ErrYearNotFound:
			return errHttpNotFound
		case academic.ErrYearNotActive:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "closing branch year")
	}
	return ctx.JSON(http.StatusOK, by)
}

func (api *academicApi) createClass(ctx echo.Context) error {
	var data academic.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrYearNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "branch_year_id", Error: "unknown branch year"})
		}
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *academicApi) retrieveClass(ctx echo.Context) error {
	cls, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == academic.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *academicApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []academic.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *academicApi) openSession(ctx echo.Context) error {
	var data academic.NewAttendanceSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendanceSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	as, err := api.svc.OpenAttendanceSession(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		if errors.Cause(err) == academic.ErrClassNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: "unknown class"})
		}
		return errors.Wrap(err, "opening attendance session")
	}
	return ctx.JSON(http.StatusCreated, as)
}

// recordScan ingests one QR scan; re-scans of the same student in the same
// session return the original record.
func (api *academicApi) recordScan(ctx echo.Context) error {
	var data academic.ScanPayload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScanPayload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// a scanned QR carries the student UUID; make sure it resolves
	if _, err := api.studentSvc.GetByID(ctx.Request().Context(), data.StudentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "unknown student"})
		}
		return errors.Wrap(err, "finding student by ID")
	}

	rec, err := api.svc.RecordScan(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == academic.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording scan")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *academicApi) querySessionRecords(ctx echo.Context) error {
	records, err := api.svc.QueryAttendance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if records == nil {
		records = []academic.AttendanceRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}
