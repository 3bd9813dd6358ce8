package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"deeplx/internal/service"
	"deeplx/internal/translator"
)

// translateRequest is the community DeepLX request shape.
type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// translateResponse is the community DeepLX response shape.
type translateResponse struct {
	Code         int      `json:"code"`
	Data         string   `json:"data,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	SourceLang   string   `json:"source_lang,omitempty"`
	TargetLang   string   `json:"target_lang,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// handleTranslate handles POST /translate.
func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, translateResponse{
			Code:    http.StatusBadRequest,
			Message: "invalid request body",
		})
		return
	}

	res, err := s.svc.Translate(c.Request.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		s.writeTranslateError(c, err)
		return
	}

	c.JSON(http.StatusOK, translateResponse{
		Code:         http.StatusOK,
		Data:         res.Translation,
		Alternatives: res.Alternatives,
		SourceLang:   res.DetectedLang,
		TargetLang:   res.TargetLang,
	})
}

// writeTranslateError maps translator errors onto the response shape. An
// upstream rejection keeps its original status code so callers can tell rate
// limiting apart from blocking; everything else is a 503.
func (s *Server) writeTranslateError(c *gin.Context, err error) {
	var te *translator.TransportError
	var de *translator.DecodeError

	switch {
	case errors.Is(err, service.ErrEmptyText), errors.Is(err, translator.ErrMissingTargetLang):
		c.JSON(http.StatusBadRequest, translateResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	case errors.As(err, &te):
		log.Warn().
			Str("request_id", GetRequestID(c)).
			Int("upstream_status", te.StatusCode).
			Msg("upstream rejected translate request")
		c.JSON(te.StatusCode, translateResponse{
			Code:    te.StatusCode,
			Message: "upstream rejected the request",
		})
	case errors.As(err, &de):
		log.Error().
			Str("request_id", GetRequestID(c)).
			Err(err).
			Msg("upstream response did not decode")
		c.JSON(http.StatusServiceUnavailable, translateResponse{
			Code:    http.StatusServiceUnavailable,
			Message: "unexpected upstream response",
		})
	default:
		log.Error().
			Str("request_id", GetRequestID(c)).
			Err(err).
			Msg("translate request failed")
		c.JSON(http.StatusServiceUnavailable, translateResponse{
			Code:    http.StatusServiceUnavailable,
			Message: "upstream unreachable",
		})
	}
}

// handleHealthz handles the liveness probe endpoint.
func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleHistory handles GET /history.
func (s *Server) handleHistory(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid limit"})
			return
		}
		limit = parsed
	}

	history, err := s.svc.History(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to read history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"translations": history})
}
