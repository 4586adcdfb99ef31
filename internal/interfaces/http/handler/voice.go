package handler

import (
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nia/backend/internal/application/voice"
)

// defaultDownloadURLTTL bounds how long a chunk download link stays valid
const defaultDownloadURLTTL = 15 * time.Minute

// VoiceHandler handles call session HTTP requests, including raw audio
// chunk uploads
type VoiceHandler struct {
	BaseHandler
	sessionService *voice.SessionService
	maxChunkBytes  int64
}

// NewVoiceHandler creates a new voice handler. maxChunkBytes caps the
// request body read for chunk uploads; zero applies a 4 MiB default.
func NewVoiceHandler(sessionService *voice.SessionService, maxChunkBytes int64) *VoiceHandler {
	if maxChunkBytes <= 0 {
		maxChunkBytes = 4 << 20
	}
	return &VoiceHandler{
		sessionService: sessionService,
		maxChunkBytes:  maxChunkBytes,
	}
}

// Start godoc
// @ID           startVoiceSession
// @Summary      Start a call session
// @Description  Open a call session for audio chunk uploads, optionally linked to a lead
// @Tags         voice
// @Accept       json
// @Produce      json
// @Param        request body voice.StartSessionRequest false "Session options"
// @Success      201 {object} dto.Response{data=voice.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /voice/sessions [post]
func (h *VoiceHandler) Start(c *gin.Context) {
	// Body is optional; a bare POST opens an unlinked session
	var req voice.StartSessionRequest
	_ = c.ShouldBindJSON(&req)

	if req.OwnerID == nil {
		userID, err := getUserID(c)
		if err != nil {
			h.Unauthorized(c, "Authentication required")
			return
		}
		req.OwnerID = &userID
	}

	result, err := h.sessionService.Start(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// UploadChunk godoc
// @ID           uploadVoiceChunk
// @Summary      Upload an audio chunk
// @Description  Upload one raw audio chunk; the sequence number must follow the previous chunk
// @Tags         voice
// @Accept       application/octet-stream
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        seq path int true "Chunk sequence number, zero-based and contiguous"
// @Success      200 {object} dto.Response{data=voice.ChunkResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /voice/sessions/{id}/chunks/{seq} [put]
func (h *VoiceHandler) UploadChunk(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	sequence, err := strconv.Atoi(c.Param("seq"))
	if err != nil || sequence < 0 {
		h.BadRequest(c, "Invalid chunk sequence")
		return
	}

	// Read one byte past the cap so oversized bodies are detected without
	// buffering the whole payload
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxChunkBytes+1))
	if err != nil {
		h.BadRequest(c, "Failed to read chunk payload")
		return
	}
	if len(data) == 0 {
		h.BadRequest(c, "Empty chunk payload")
		return
	}

	result, err := h.sessionService.UploadChunk(c.Request.Context(), id, voice.UploadChunkRequest{
		Sequence:    sequence,
		Data:        data,
		ContentType: c.ContentType(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// End godoc
// @ID           endVoiceSession
// @Summary      End a call session
// @Description  Close a session; a non-empty transcript is queued through conversation analysis
// @Tags         voice
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body voice.EndSessionRequest false "Final transcript"
// @Success      200 {object} dto.Response{data=voice.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /voice/sessions/{id}/end [post]
func (h *VoiceHandler) End(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	var req voice.EndSessionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.sessionService.End(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Fail godoc
// @ID           failVoiceSession
// @Summary      Mark a call session as failed
// @Description  Abort a session that cannot be completed, recording the failure reason
// @Tags         voice
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=voice.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /voice/sessions/{id}/fail [post]
func (h *VoiceHandler) Fail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "client reported failure"
	}

	result, err := h.sessionService.Fail(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @ID           getVoiceSessionById
// @Summary      Get a call session by ID
// @Tags         voice
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=voice.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /voice/sessions/{id} [get]
func (h *VoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	result, err := h.sessionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listVoiceSessions
// @Summary      List call sessions
// @Tags         voice
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        owner_id query string false "Filter by owner" format(uuid)
// @Param        status query string false "Filter by status" Enums(active, completed, failed)
// @Success      200 {object} dto.Response{data=[]voice.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /voice/sessions [get]
func (h *VoiceHandler) List(c *gin.Context) {
	var filter voice.SessionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	results, total, err := h.sessionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// ListChunks godoc
// @ID           listVoiceChunks
// @Summary      List accepted chunks for a session
// @Tags         voice
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]voice.ChunkResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /voice/sessions/{id}/chunks [get]
func (h *VoiceHandler) ListChunks(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	results, err := h.sessionService.ListChunks(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// ChunkDownloadURL godoc
// @ID           voiceChunkDownloadUrl
// @Summary      Get a presigned download URL for a chunk
// @Tags         voice
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        seq path int true "Chunk sequence number"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /voice/sessions/{id}/chunks/{seq}/url [get]
func (h *VoiceHandler) ChunkDownloadURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	sequence, err := strconv.Atoi(c.Param("seq"))
	if err != nil || sequence < 0 {
		h.BadRequest(c, "Invalid chunk sequence")
		return
	}

	url, expiresAt, err := h.sessionService.ChunkDownloadURL(c.Request.Context(), id, sequence, defaultDownloadURLTTL)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"url":        url,
		"expires_at": expiresAt,
	})
}

// RegisterRoutes registers voice session routes
func (h *VoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/voice/sessions")
	{
		sessions.POST("", h.Start)
		sessions.GET("", h.List)
		sessions.GET("/:id", h.GetByID)
		sessions.PUT("/:id/chunks/:seq", h.UploadChunk)
		sessions.GET("/:id/chunks", h.ListChunks)
		sessions.GET("/:id/chunks/:seq/url", h.ChunkDownloadURL)
		sessions.POST("/:id/end", h.End)
		sessions.POST("/:id/fail", h.Fail)
	}
}
