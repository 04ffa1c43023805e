package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/document"
	"github.com/markazhub/markaz/core/scoring"
	"github.com/markazhub/markaz/core/student"
)

type documentApi struct {
	conf        *core.Config
	logger      core.Logger
	studentSvc  student.ServiceInterface
	scoringRepo scoring.Repository
}

func registerDocumentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	logger core.Logger,
	studentSvc student.ServiceInterface,
	scoringRepo scoring.Repository,
) {
	api := documentApi{
		conf:        conf,
		logger:      logger,
		studentSvc:  studentSvc,
		scoringRepo: scoringRepo,
	}

	dg := g.Group("/documents", jwt, adminMiddleware())
	dg.POST("/id-cards", api.generateIDCards)
	dg.POST("/result-sheets", api.generateResultSheets)
}

type (
	BulkDocumentRequest struct {
		// either an explicit list or a roster filter
		StudentIDs []string             `json:"student_ids"`
		Filter     *student.QueryFilter `json:"filter"`
	}

	BulkDocumentFailure struct {
		Success   bool   `json:"success"`
		Completed int    `json:"completed"`
		Failed    int    `json:"failed"`
		Reason    string `json:"reason"`
	}
)

func (api *documentApi) generateIDCards(ctx echo.Context) error {
	return api.generate(ctx, document.NewIDCardRenderer(api.conf), "id-cards.zip")
}

func (api *documentApi) generateResultSheets(ctx echo.Context) error {
	return api.generate(ctx, document.NewResultSheetRenderer(api.conf, api.scoringRepo), "munaqasyah-results.zip")
}

func (api *documentApi) generate(ctx echo.Context, renderer document.Renderer, archiveName string) error {
	var data BulkDocumentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkDocumentRequest")
	}

	students, err := api.resolveStudents(ctx, data)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		return core.NewValidationError(errors.New("no students matched the request"))
	}

	gen := document.NewGenerator(renderer, api.logger)
	res := gen.Generate(ctx.Request().Context(), students, func(percent int) {
		api.logger.Debug(fmt.Sprintf("bulk %s: %d%%", archiveName, percent))
	})
	if !res.Success {
		return ctx.JSON(http.StatusUnprocessableEntity, BulkDocumentFailure{
			Completed: res.Completed,
			Failed:    res.Failed,
			Reason:    res.Reason,
		})
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+archiveName+`"`)
	return ctx.Blob(http.StatusOK, "application/zip", res.Archive)
}

func (api *documentApi) resolveStudents(ctx echo.Context, data BulkDocumentRequest) ([]student.Student, error) {
	reqCtx := ctx.Request().Context()

	if len(data.StudentIDs) > 0 {
		students := make([]student.Student, 0, len(data.StudentIDs))
		for _, id := range data.StudentIDs {
			std, err := api.studentSvc.GetByID(reqCtx, id)
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return nil, core.NewValidationError(nil, core.FieldError{Field: "student_ids", Error: "unknown student " + id})
				}
				return nil, errors.Wrap(err, "finding student by ID")
			}
			students = append(students, std)
		}
		return students, nil
	}

	filter := student.QueryFilter{}
	if data.Filter != nil {
		filter = *data.Filter
		filter.Clean()
	}
	students, err := api.studentSvc.Filter(reqCtx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}
