package echoapi

import (
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core"
	"github.com/markazhub/markaz/core/scoring"
)

// scannerPath is where a conflicted examiner is sent back to.
const scannerPath = "/munaqasyah/scan"

type scoringApi struct {
	repo     scoring.Repository
	logger   core.Logger
	validate *validator.Validate

	mu        sync.Mutex
	workflows map[string]*scoring.Workflow // examinerID -> workflow
}

func registerScoringAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	repo scoring.Repository,
	logger core.Logger,
	validate *validator.Validate,
) {
	api := &scoringApi{
		repo:      repo,
		logger:    logger,
		validate:  validate,
		workflows: make(map[string]*scoring.Workflow),
	}

	mg := g.Group("/munaqasyah", jwt, munaqisyMiddleware())
	mg.POST("/load", api.load)
	mg.POST("/score", api.submitCategory)
	mg.POST("/finish", api.finish)
	mg.GET("/students/:id", api.retrieveByStudent)
}

// workflow returns the examiner's workflow, creating it on first use. Each
// examiner drives exactly one.
func (api *scoringApi) workflow(examinerID string) *scoring.Workflow {
	api.mu.Lock()
	defer api.mu.Unlock()

	wf, ok := api.workflows[examinerID]
	if !ok {
		wf = scoring.NewWorkflow(api.repo, api.logger, examinerID)
		api.workflows[examinerID] = wf
	}
	return wf
}

type (
	LoadRequest struct {
		StudentID    string `json:"student_id" validate:"required,uuid4"`
		ClassID      string `json:"class_id" validate:"required,uuid4"`
		BranchYearID string `json:"branch_year_id" validate:"required,uuid4"`
	}

	ScoreRequest struct {
		Category string `json:"category" validate:"required"`
		Score    int    `json:"score" validate:"min=0,max=100"`
	}

	LockConflictResponse struct {
		Error      string `json:"error"`
		RedirectTo string `json:"redirect_to"`
	}

	SessionResponse struct {
		Session scoring.Session `json:"session"`
		State   string          `json:"state"`
		Total   int             `json:"total"`
	}
)

func (lr *LoadRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lr)
}

func (sr *ScoreRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}

func (api *scoringApi) load(ctx echo.Context) error {
	var data LoadRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoadRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	wf := api.workflow(claims.Subject)

	sess, err := wf.Load(ctx.Request().Context(), data.StudentID, data.ClassID, data.BranchYearID)
	if err != nil {
		if errors.Cause(err) == scoring.ErrLockConflict {
			// another examiner holds this student; back to the scanner
			return ctx.JSON(http.StatusConflict, LockConflictResponse{
				Error:      "this student is being examined by someone else",
				RedirectTo: scannerPath,
			})
		}
		return errors.Wrap(err, "loading scoring session")
	}

	return ctx.JSON(http.StatusOK, api.sessionResponse(wf, sess))
}

func (api *scoringApi) submitCategory(ctx echo.Context) error {
	var data ScoreRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScoreRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	wf := api.workflow(claims.Subject)

	if err = wf.SubmitCategory(ctx.Request().Context(), data.Category, data.Score); err != nil {
		switch errors.Cause(err) {
		case scoring.ErrBadCategory:
			return core.NewValidationError(nil, core.FieldError{Field: "category", Error: "unknown category"})
		case scoring.ErrNotLoaded:
			return core.NewValidationError(errors.New("no student loaded"))
		}
		return errors.Wrap(err, "submitting category score")
	}

	return ctx.JSON(http.StatusOK, api.sessionResponse(wf, wf.Session()))
}

func (api *scoringApi) finish(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	wf := api.workflow(claims.Subject)

	if err = wf.Finish(ctx.Request().Context()); err != nil {
		if errors.Cause(err) == scoring.ErrNotLoaded {
			return core.NewValidationError(errors.New("no student loaded"))
		}
		return errors.Wrap(err, "finishing scoring session")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"redirect_to": scannerPath})
}

// retrieveByStudent is a read-only view of a student's munaqasyah record;
// it does not touch the lock.
func (api *scoringApi) retrieveByStudent(ctx echo.Context) error {
	sess, err := api.repo.GetSessionByStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == scoring.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding scoring session")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{Session: sess, Total: sess.Total()})
}

func (api *scoringApi) sessionResponse(wf *scoring.Workflow, sess scoring.Session) SessionResponse {
	return SessionResponse{
		Session: sess,
		State:   wf.State().String(),
		Total:   sess.Total(),
	}
}
