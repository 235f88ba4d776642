package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"ovenctrl/internal/core/domain"
	"ovenctrl/internal/core/ports"
	"ovenctrl/internal/infrastructure/monitoring"
	apperrors "ovenctrl/pkg/errors"
	"ovenctrl/pkg/tracing"
	"ovenctrl/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const notFoundPath = "/not_found.html"

// LoadTemplates installs the join page templates on the router.
func LoadTemplates(router *gin.Engine) error {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

type JoinHandler struct {
	joinService ports.JoinService
	metrics     *monitoring.PrometheusCollector
	log         *zap.SugaredLogger
}

func NewJoinHandler(joinService ports.JoinService, metrics *monitoring.PrometheusCollector, log *zap.SugaredLogger) *JoinHandler {
	return &JoinHandler{
		joinService: joinService,
		metrics:     metrics,
		log:         log,
	}
}

func (h *JoinHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.Login)
	router.POST("/join", h.Join)
	router.GET(notFoundPath, h.NotFound)
}

type JoinRequest struct {
	Room     string `form:"room"`
	Password string `form:"password"`
}

func (h *JoinHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

func (h *JoinHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "not_found.html", nil)
}

func (h *JoinHandler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid join form").WithContext("content_type", c.ContentType()))
		return
	}

	// A room name that cannot exist gets the same answer as an unknown room.
	if err := validation.ValidateRoomName(req.Room); err != nil {
		h.log.Warnw("Invalid room", "error", err, "remote", c.ClientIP())
		h.recordJoin("invalid_form")
		c.Redirect(http.StatusSeeOther, notFoundPath)
		return
	}
	if err := validation.ValidateRoomPassword(req.Password); err != nil {
		h.log.Warnw("Invalid password", "room", req.Room, "error", err, "remote", c.ClientIP())
		h.recordJoin("invalid_form")
		c.Redirect(http.StatusSeeOther, notFoundPath)
		return
	}

	ctx, span := tracing.TraceJoin(c.Request.Context(), req.Room)
	defer span.End()

	page, err := h.joinService.Join(ctx, req.Room, req.Password)
	if err != nil {
		tracing.RecordError(ctx, err)
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			h.log.Warnw("Invalid room", "room", req.Room, "remote", c.ClientIP())
			h.recordJoin("unknown_room")
		case errors.Is(err, domain.ErrWrongRoomPassword):
			h.log.Warnw("Invalid password", "room", req.Room, "remote", c.ClientIP())
			h.recordJoin("wrong_password")
		default:
			c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "join failed", http.StatusInternalServerError))
			return
		}
		c.Redirect(http.StatusSeeOther, notFoundPath)
		return
	}

	h.recordJoin("ok")
	c.HTML(http.StatusOK, "player.html", gin.H{
		"Room":      string(page.Room),
		"SourceURL": page.SourceURL,
	})
}

func (h *JoinHandler) recordJoin(result string) {
	if h.metrics != nil {
		h.metrics.RecordJoin(result)
	}
}
