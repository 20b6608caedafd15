package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
	"github.com/rhazelina/qr-absence-sub000/core/session"
	"github.com/rhazelina/qr-absence-sub000/services/telemetry"
)

type sessionApi struct {
	registry *session.Registry
	leaveSvc *leave.Service
	metrics  *telemetry.Metrics
	validate *validator.Validate
	logger   core.Logger
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps Deps) {
	api := sessionApi{
		registry: deps.Sessions,
		leaveSvc: deps.LeaveSvc,
		metrics:  deps.Metrics,
		validate: deps.Validate,
		logger:   deps.Logger,
	}

	sg := g.Group("/sessions", jwt)
	sg.POST("", api.open, staffMiddleware())

	// detail endpoints
	dg := sg.Group("/:id", sessionMiddleware(api.registry))
	dg.GET("", api.retrieve)
	dg.DELETE("", api.discard, staffMiddleware())
	dg.POST("/teacher-leave", api.declareTeacherLeave, teacherMiddleware())
}

// Handlers

// open opens the session of a schedule entry. Opening an already open session returns it unchanged.
func (api *sessionApi) open(ctx echo.Context) error {
	var data OpenSessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OpenSessionRequest")
	}
	key, err := data.Key(api.validate)
	if err != nil {
		return err
	}

	m, created := api.registry.Open(key)
	if !created {
		return ctx.JSON(http.StatusOK, newSessionResponse(m))
	}

	// a teacher absence recorded before a restart still excuses the session
	if err = api.leaveSvc.RestoreSession(ctx.Request().Context(), m); err != nil {
		api.registry.Discard(m.Session().ID)
		return errors.Wrap(err, "restoring session")
	}
	return ctx.JSON(http.StatusCreated, newSessionResponse(m))
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	m, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, newSessionResponse(m))
}

// discard closes the screen of a session: it is forgotten by the registry.
func (api *sessionApi) discard(ctx echo.Context) error {
	m, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	api.registry.Discard(m.Session().ID)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) declareTeacherLeave(ctx echo.Context) error {
	m, err := getContextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data leave.TeacherAbsence
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherAbsence")
	}
	// teachers declare for themselves
	data.Teacher = displayName(claims)

	res, err := api.leaveSvc.DeclareTeacherAbsence(ctx.Request().Context(), m, data)
	if err != nil {
		return err
	}
	api.metrics.ObserveLeave(res)
	api.logger.Info("teacher leave on "+m.Session().Key.String()+": "+res.Summary.SessionStatus, claims.Person())

	code := http.StatusOK
	if res.Applied {
		code = http.StatusCreated
	}
	return ctx.JSON(code, LeaveResponse{Result: res, Session: newSessionResponse(m)})
}

type (
	OpenSessionRequest struct {
		Subject   string `json:"subject" validate:"required"`
		ClassName string `json:"class_name" validate:"required"`
		TimeSlot  string `json:"time_slot" validate:"required,timeslot"`
		Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	}

	SessionResponse struct {
		session.TeachingSession
		CheckInOffered bool `json:"check_in_offered"`
	}

	LeaveResponse struct {
		leave.Result
		Session *SessionResponse `json:"session,omitempty"`
	}
)

func (req *OpenSessionRequest) Key(validate *validator.Validate) (session.Key, error) {
	req.Subject = core.CleanString(req.Subject)
	req.ClassName = core.CleanString(req.ClassName)
	req.TimeSlot = core.CleanString(req.TimeSlot)
	req.Date = core.CleanString(req.Date)
	if err := validate.Struct(req); err != nil {
		return session.Key{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return session.Key{}, errors.Wrap(err, "parsing session date")
	}
	return session.NewKey(req.Subject, req.ClassName, req.TimeSlot, date), nil
}

func newSessionResponse(m *session.Machine) *SessionResponse {
	sess := m.Session()
	return &SessionResponse{TeachingSession: sess, CheckInOffered: sess.Status.IsOpen()}
}
