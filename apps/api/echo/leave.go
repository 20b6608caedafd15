package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
	"github.com/rhazelina/qr-absence-sub000/services/telemetry"
)

const evidenceField = "evidence"

type leaveApi struct {
	svc     *leave.Service
	metrics *telemetry.Metrics
	logger  core.Logger
}

func registerLeaveAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps Deps) {
	api := leaveApi{
		svc:     deps.LeaveSvc,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}

	// the multipart envelope gets one extra megabyte on top of the evidence itself
	bodyLimit := middleware.BodyLimit(fmt.Sprintf("%dM", deps.Conf.Evidence.MaxUploadMBytes+1))

	lg := g.Group("/leave", jwt)
	lg.GET("", api.query)
	lg.POST("/excuses", api.submitExcuse, bodyLimit)
	lg.POST("/early-dismissals", api.submitEarlyDismissal, staffMiddleware())
}

// Handlers

func (api *leaveApi) submitExcuse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	data := leave.StudentExcuse{
		Student: subjectFor(claims, ctx.FormValue("student")),
		Kind:    ctx.FormValue("kind"),
		Note:    ctx.FormValue("note"),
	}
	if data.EffectiveDate, err = parseDate(ctx.FormValue("effective_date")); err != nil {
		return core.NewValidationError(nil, core.FieldError{
			Field: "effective_date", Error: "effective_date must be a date like 2006-01-02",
		})
	}

	fh, err := ctx.FormFile(evidenceField)
	switch {
	case err == nil:
		file, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening evidence")
		}
		defer file.Close()
		data.Evidence = &leave.Attachment{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Content:     file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// reported by validation
	default:
		return errors.Wrap(err, "reading evidence")
	}

	res, err := api.svc.SubmitStudentExcuse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	api.metrics.ObserveLeave(res)
	return ctx.JSON(http.StatusCreated, LeaveResponse{Result: res})
}

func (api *leaveApi) submitEarlyDismissal(ctx echo.Context) error {
	var data leave.EarlyDismissal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EarlyDismissal")
	}

	res, err := api.svc.SubmitEarlyDismissal(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	api.metrics.ObserveLeave(res)
	return ctx.JSON(http.StatusCreated, LeaveResponse{Result: res})
}

func (api *leaveApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var q LeaveQuery
	if err = ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to LeaveQuery")
	}
	filter, err := q.Filter()
	if err != nil {
		return err
	}
	if !claims.IsStaff() {
		filter.SubjectPerson = displayName(claims)
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, leave.OrderingFields...)

	reqs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying leave requests")
	}
	if reqs == nil {
		reqs = []leave.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

// subjectFor returns whom a request is about: staff name the student, students only speak for themselves.
func subjectFor(claims Claims, requested string) string {
	if claims.IsStaff() {
		return requested
	}
	return displayName(claims)
}
