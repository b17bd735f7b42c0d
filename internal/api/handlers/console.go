package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ppe-monitor-go/internal/api/middleware"
	"ppe-monitor-go/internal/logging"
	"ppe-monitor-go/internal/models"
	"ppe-monitor-go/internal/services/credentials"
)

// Monitor is the part of the application the console drives.
type Monitor interface {
	Status() models.MonitorStatus
	Login(username, password string) error
	RequestClose()
}

// Authenticator validates credentials, returning credentials.ErrEmptyFields
// or credentials.ErrInvalidCredentials on failure.
type Authenticator interface {
	Check(username, password string) error
}

type Streamer interface {
	StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request)
}

type ConsoleHandler struct {
	monitor    Monitor
	auth       Authenticator
	stream     Streamer
	jwtSecret  string
	sessionTTL time.Duration
}

func NewConsoleHandler(monitor Monitor, auth Authenticator, stream Streamer, jwtSecret string, sessionTTL time.Duration) *ConsoleHandler {
	return &ConsoleHandler{
		monitor:    monitor,
		auth:       auth,
		stream:     stream,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
	}
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Invalid credentials"`
}

type StopResponse struct {
	Status string `json:"status" example:"closing"`
}

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Login</title></head>
<body style="font-family: sans-serif; max-width: 320px; margin: 80px auto;">
<h2>PPE Detection System</h2>
{{if .}}<p style="color: red;">{{.}}</p>{{end}}
<form method="post" action="/api/login">
<p><label>Username<br><input name="username" autofocus></label></p>
<p><label>Password<br><input name="password" type="password"></label></p>
<p><button type="submit">Login</button></p>
</form>
</body>
</html>
`))

const consolePage = `<!DOCTYPE html>
<html>
<head><title>PPE Detection System</title></head>
<body style="font-family: sans-serif; text-align: center;">
<h2>PPE Detection System</h2>
<img src="/stream.mjpg" width="640" height="480" alt="live feed">
<p id="status" style="color: green;">System Status: Active</p>
<form method="post" action="/api/stop">
<button type="submit" style="background: red; color: white;">Stop</button>
</form>
</body>
</html>
`

// @Summary Login form
// @Description HTML credential form for the web console
// @Tags console
// @Produce html
// @Param error query string false "Message shown above the form"
// @Success 200 {string} string "HTML page"
// @Router /login [get]
func (h *ConsoleHandler) LoginForm(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := loginPage.Execute(c.Writer, c.Query("error")); err != nil {
		logging.Error(c).Err(err).Msg("Failed to render login form")
	}
}

// @Summary Login
// @Description Authenticate against the credential store. A successful login starts monitoring if it is not running yet and sets the session cookie.
// @Tags console
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/login [post]
func (h *ConsoleHandler) Login(c *gin.Context) {
	fromForm := strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") ||
		strings.HasPrefix(c.ContentType(), "multipart/form-data")

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c, fromForm, http.StatusBadRequest, credentials.ErrEmptyFields)
		return
	}
	if err := h.auth.Check(req.Username, req.Password); err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, credentials.ErrEmptyFields) {
			status = http.StatusBadRequest
		}
		logging.Warn(c).Str("username", req.Username).Err(err).Msg("Console login failed")
		h.loginFailed(c, fromForm, status, err)
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, req.Username, h.sessionTTL)
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to sign session token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	if err := h.monitor.Login(req.Username, req.Password); err != nil {
		logging.Warn(c).Err(err).Msg("Monitor did not start from console login")
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	logging.Info(c).Str("username", req.Username).Msg("Console login successful")

	if fromForm {
		c.Redirect(http.StatusSeeOther, "/console")
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Username:  req.Username,
		ExpiresAt: time.Now().Add(h.sessionTTL),
	})
}

func (h *ConsoleHandler) loginFailed(c *gin.Context, fromForm bool, status int, err error) {
	if fromForm {
		c.Redirect(http.StatusSeeOther, "/login?error="+url.QueryEscape(err.Error()))
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// @Summary Console page
// @Description Live annotated feed with a stop control
// @Tags console
// @Produce html
// @Success 200 {string} string "HTML page"
// @Failure 401 {object} ErrorResponse
// @Router /console [get]
func (h *ConsoleHandler) Console(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(consolePage))
}

// @Summary Monitor status
// @Description Lifecycle state, latest counts, alert banner and frame statistics
// @Tags console
// @Produce json
// @Success 200 {object} models.MonitorStatus
// @Failure 401 {object} ErrorResponse
// @Router /api/status [get]
func (h *ConsoleHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Status())
}

// @Summary Stop monitoring
// @Description Close the application. The camera is released and the process exits.
// @Tags console
// @Produce json
// @Success 202 {object} StopResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/stop [post]
func (h *ConsoleHandler) Stop(c *gin.Context) {
	logging.Info(c).Msg("Stop requested from web console")
	h.monitor.RequestClose()
	c.JSON(http.StatusAccepted, StopResponse{Status: "closing"})
}

// @Summary Live stream
// @Description multipart/x-mixed-replace MJPEG stream of annotated frames
// @Tags console
// @Produce multipart/x-mixed-replace
// @Success 200
// @Failure 401 {object} ErrorResponse
// @Router /stream.mjpg [get]
func (h *ConsoleHandler) Stream(c *gin.Context) {
	h.stream.StreamMJPEGHTTP(c.Writer, c.Request)
}
