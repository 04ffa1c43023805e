package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core/student"
)

type studentApi struct {
	svc      student.ServiceInterface
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc student.ServiceInterface, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	sg := g.Group("/students", jwt)
	sg.POST("", api.register, adminMiddleware())
	sg.GET("", api.query, teacherOrAdminMiddleware())
	sg.DELETE("", api.destroyMultiple, adminMiddleware())
	sg.GET("/nis/:nis", api.retrieveByNIS, teacherOrAdminMiddleware())

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve, teacherOrAdminMiddleware())
	dg.PUT("", api.update, adminMiddleware())
	dg.POST("/enroll", api.enroll, adminMiddleware())
	dg.POST("/unenroll", api.unenroll, adminMiddleware())
}

func (api *studentApi) register(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	std, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()

	students, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, std)
}

// retrieveByNIS resolves a scanned card number to a student.
func (api *studentApi) retrieveByNIS(ctx echo.Context) error {
	std, err := api.svc.GetByNIS(ctx.Request().Context(), ctx.Param("nis"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by NIS")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

type EnrollmentRequest struct {
	ClassID string `json:"class_id" validate:"required,uuid4"`
}

func (er *EnrollmentRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(er)
}

func (api *studentApi) enroll(ctx echo.Context) error {
	var data EnrollmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Enroll(ctx.Request().Context(), ctx.Param("id"), data.ClassID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) unenroll(ctx echo.Context) error {
	var data EnrollmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Unenroll(ctx.Request().Context(), ctx.Param("id"), data.ClassID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}
