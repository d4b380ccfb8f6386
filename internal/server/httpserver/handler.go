package httpserver

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/dmitrijs2005/gradekeeper/internal/server/services"
	"github.com/dmitrijs2005/gradekeeper/internal/server/sessions"
	"github.com/labstack/echo/v4"
)

// Handler serves the JSON endpoints. Every outcome, including failures, is
// answered with 200 and a message body.
type Handler struct {
	auth     *services.AuthService
	recovery *services.RecoveryService
	records  *services.RecordService
	sessions *sessions.Manager
	signer   *auth.CookieSigner
	secure   bool
	logger   logging.Logger
}

func NewHandler(as *services.AuthService, rs *services.RecoveryService, recs *services.RecordService,
	sm *sessions.Manager, signer *auth.CookieSigner, secureCookie bool, l logging.Logger) *Handler {
	return &Handler{
		auth:     as,
		recovery: rs,
		records:  recs,
		sessions: sm,
		signer:   signer,
		secure:   secureCookie,
		logger:   l.With("module", "http_handler"),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Role    models.Role `json:"role"`
}

type captchaResponse struct {
	Captcha string `json:"captcha"`
}

type recordRequest struct {
	UserName   string `json:"username"`
	Semester   int    `json:"semester"`
	Subject    string `json:"subject"`
	Marks      int    `json:"marks"`
	Attendance int    `json:"attendance"`
}

// studentRecord is a record as shown to its own student.
type studentRecord struct {
	Semester   int    `json:"semester"`
	Subject    string `json:"subject"`
	Marks      int    `json:"marks"`
	Attendance int    `json:"attendance"`
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (h *Handler) Routes(e *echo.Echo) {
	e.GET("/init", h.initDB)
	e.POST("/register", h.register)
	e.POST("/login", h.login)
	e.GET("/logout", h.logout)
	e.POST("/forgot", h.forgot)
	e.GET("/captcha", h.captcha)
	e.GET("/student/data", h.studentData)
	e.GET("/faculty/data", h.facultyData)
	e.POST("/faculty/update", h.facultyUpdate)
}

func (h *Handler) setSessionCookie(c echo.Context, sess *sessions.Session) error {
	value, err := h.signer.Sign(sess.ID, time.Until(sess.ExpiresAt))
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.secure {
		cookie.SameSite = http.SameSiteNoneMode
	}
	c.SetCookie(cookie)
	return nil
}

func (h *Handler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
	})
}

func (h *Handler) initDB(c echo.Context) error {
	if err := h.records.InitDatabase(c.Request().Context()); err != nil {
		return message(c, messageFor(err, msgInternal))
	}
	return c.String(http.StatusOK, msgDBInitialized)
}

func (h *Handler) register(c echo.Context) error {
	var req services.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return message(c, msgInvalidBody)
	}

	if err := h.auth.Register(c.Request().Context(), req); err != nil {
		return message(c, messageFor(err, msgRegisterConflict))
	}
	return message(c, msgRegistered)
}

func (h *Handler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return message(c, msgInvalidBody)
	}

	ctx := c.Request().Context()

	sess, err := h.auth.Login(ctx, currentSessionID(c), req.UserName, req.Password)
	if err != nil {
		return message(c, messageFor(err, msgInternal))
	}

	if err := h.setSessionCookie(c, sess); err != nil {
		h.logger.Error(ctx, "session cookie signing failed", "error", err)
		return message(c, msgInternal)
	}

	return c.JSON(http.StatusOK, loginResponse{Message: msgLoginSuccess, Role: sess.Role})
}

func (h *Handler) logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), currentSessionID(c)); err != nil {
		return message(c, messageFor(err, msgInternal))
	}
	h.clearSessionCookie(c)
	return message(c, msgLoggedOut)
}

func (h *Handler) captcha(c echo.Context) error {
	ctx := c.Request().Context()

	sess, code, err := h.recovery.IssueCaptcha(ctx, currentSessionID(c))
	if err != nil {
		return message(c, messageFor(err, msgInternal))
	}

	if err := h.setSessionCookie(c, sess); err != nil {
		h.logger.Error(ctx, "session cookie signing failed", "error", err)
		return message(c, msgInternal)
	}

	return c.JSON(http.StatusOK, captchaResponse{Captcha: code})
}

func (h *Handler) forgot(c echo.Context) error {
	var req services.RecoveryRequest
	if err := c.Bind(&req); err != nil {
		return message(c, msgInvalidBody)
	}

	field, err := h.recovery.Recover(c.Request().Context(), currentSessionID(c), req)
	if err != nil {
		return message(c, messageFor(err, msgRecoveryConflict))
	}
	return message(c, field+" updated Successfully")
}

func (h *Handler) studentData(c echo.Context) error {
	list, err := h.records.StudentRecords(c.Request().Context(), currentSession(c))
	if err != nil {
		list = nil
	}

	out := make([]studentRecord, 0, len(list))
	for _, r := range list {
		out = append(out, studentRecord{Semester: r.Semester, Subject: r.Subject, Marks: r.Marks, Attendance: r.Attendance})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) facultyData(c echo.Context) error {
	list, err := h.records.FacultyRecords(c.Request().Context(), currentSession(c))
	if err != nil || list == nil {
		list = []models.AcademicRecord{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) facultyUpdate(c echo.Context) error {
	sess := currentSession(c)
	if !sess.HasRole(models.RoleFaculty) {
		return message(c, messageFor(common.ErrorUnauthorized, msgInternal))
	}

	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return message(c, msgInvalidBody)
	}

	rec := models.AcademicRecord{
		UserName:   req.UserName,
		Semester:   req.Semester,
		Subject:    req.Subject,
		Marks:      req.Marks,
		Attendance: req.Attendance,
	}

	if err := h.records.AddRecord(c.Request().Context(), sess, rec); err != nil {
		return message(c, messageFor(err, msgInternal))
	}
	return message(c, msgRecordAdded)
}
