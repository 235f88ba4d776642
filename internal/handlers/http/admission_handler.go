package http

import (
	"io"
	"net/http"
	"time"

	"ovenctrl/internal/core/domain"
	"ovenctrl/internal/core/ports"
	"ovenctrl/internal/infrastructure/monitoring"
	"ovenctrl/pkg/logger"
	"ovenctrl/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Webhook bodies are a few hundred bytes; anything this large is not from
// the media server.
const maxAdmissionBodyBytes = 64 * 1024

const maxLoggedAgentLen = 256

type AdmissionHandler struct {
	admissionService ports.AdmissionService
	metrics          *monitoring.PrometheusCollector
	log              *logger.ContextLogger
}

func NewAdmissionHandler(
	admissionService ports.AdmissionService,
	metrics *monitoring.PrometheusCollector,
	log *logger.ContextLogger,
) *AdmissionHandler {
	return &AdmissionHandler{
		admissionService: admissionService,
		metrics:          metrics,
		log:              log,
	}
}

func (h *AdmissionHandler) SetupRoutes(router *gin.Engine) {
	router.POST("/oven/admission", h.Admit)
}

// Admit always answers 200 with a verdict. The media server treats anything
// else as a failed webhook, so even unreadable bodies become a denial.
func (h *AdmissionHandler) Admit(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	var (
		req     *domain.AdmissionRequest
		verdict domain.Verdict
	)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAdmissionBodyBytes+1))
	switch {
	case err != nil:
		verdict = domain.DenyVerdict(domain.Deny(domain.ErrMalformedRequest, "malformed admission request: %v", err))
	case len(body) > maxAdmissionBodyBytes:
		verdict = domain.DenyVerdict(domain.Deny(domain.ErrMalformedRequest, "malformed admission request: body exceeds %d bytes", maxAdmissionBodyBytes))
	default:
		req, verdict = h.admissionService.Admit(ctx, body)
	}

	if h.metrics != nil {
		h.metrics.RecordVerdict(req, verdict, time.Since(start))
	}
	h.logVerdict(c, req, verdict)

	c.JSON(http.StatusOK, verdict)
}

func (h *AdmissionHandler) logVerdict(c *gin.Context, req *domain.AdmissionRequest, verdict domain.Verdict) {
	ctx := c.Request.Context()
	fields := []zap.Field{zap.String("remote", c.ClientIP())}

	if req != nil {
		fields = append(fields, zap.String("status", string(req.Status)))
		if req.Direction != "" {
			fields = append(fields,
				zap.String("direction", string(req.Direction)),
				zap.String("protocol", string(req.Protocol)),
			)
		}
		if req.URL != nil {
			// Host and path only; the query carries the stream key.
			fields = append(fields, zap.String("stream", req.URL.Host+req.URL.EscapedPath()))
		}
		if req.Client != nil {
			fields = append(fields, zap.String("client", req.Client.Address))
			if req.Client.UserAgent != "" {
				fields = append(fields, zap.String("user_agent", utils.LogSafe(req.Client.UserAgent, maxLoggedAgentLen)))
			}
		}
	}

	switch {
	case verdict.Kind == domain.VerdictClosing:
		h.log.LogDebug(ctx, "stream closing acknowledged", fields...)
	case verdict.Allowed:
		h.log.LogInfo(ctx, "stream admitted", fields...)
	default:
		fields = append(fields,
			zap.String("reason", verdict.Reason),
			zap.String("kind", domain.DenialLabel(verdict.Cause)),
		)
		h.log.LogWarn(ctx, "stream denied", fields...)
	}
}
