package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nia/backend/internal/application/meeting"
)

// MeetingHandler handles meeting scheduling and preparation HTTP requests
type MeetingHandler struct {
	BaseHandler
	meetingService *meeting.Service
	prepService    *meeting.PrepService
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService *meeting.Service, prepService *meeting.PrepService) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
		prepService:    prepService,
	}
}

// Schedule godoc
// @ID           scheduleMeeting
// @Summary      Schedule a meeting
// @Description  Schedule a meeting with a lead; overlapping meetings for the same owner are rejected
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        request body meeting.ScheduleMeetingRequest true "Meeting details"
// @Success      201 {object} dto.Response{data=meeting.MeetingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings [post]
func (h *MeetingHandler) Schedule(c *gin.Context) {
	var req meeting.ScheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	// Unowned meetings default to the authenticated user
	if req.OwnerID == nil {
		if userID, err := getUserID(c); err == nil {
			req.OwnerID = &userID
		}
	}

	result, err := h.meetingService.Schedule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getMeetingById
// @Summary      Get a meeting by ID
// @Tags         meetings
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Success      200 {object} dto.Response{data=meeting.MeetingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id} [get]
func (h *MeetingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	result, err := h.meetingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listMeetings
// @Summary      List meetings
// @Description  List meetings with pagination and optional lead, owner, status, day and upcoming filters
// @Tags         meetings
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        lead_id query string false "Filter by lead" format(uuid)
// @Param        owner_id query string false "Filter by owner" format(uuid)
// @Param        status query string false "Filter by status" Enums(scheduled, completed, cancelled)
// @Param        day query string false "Meetings on a calendar day (YYYY-MM-DD)"
// @Param        upcoming query bool false "Only meetings starting in the future"
// @Success      200 {object} dto.Response{data=[]meeting.MeetingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	var filter meeting.MeetingListFilter
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

	results, total, err := h.meetingService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateMeeting
// @Summary      Update meeting details
// @Description  Partially update a meeting's title, agenda or join URL
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Param        request body meeting.UpdateMeetingRequest true "Meeting update request"
// @Success      200 {object} dto.Response{data=meeting.MeetingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id} [put]
func (h *MeetingHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	var req meeting.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.meetingService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Reschedule godoc
// @ID           rescheduleMeeting
// @Summary      Reschedule a meeting
// @Description  Move a scheduled meeting to a new time window; conflicts are rejected
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Param        request body meeting.RescheduleRequest true "New time window"
// @Success      200 {object} dto.Response{data=meeting.MeetingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id}/reschedule [post]
func (h *MeetingHandler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	var req meeting.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.meetingService.Reschedule(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelMeeting
// @Summary      Cancel a meeting
// @Tags         meetings
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Success      200 {object} dto.Response{data=meeting.MeetingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id}/cancel [post]
func (h *MeetingHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	result, err := h.meetingService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Complete godoc
// @ID           completeMeeting
// @Summary      Mark a meeting as held
// @Description  Complete a meeting, optionally recording the post-meeting notes
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Param        request body meeting.CompleteMeetingRequest false "Post-meeting notes"
// @Success      200 {object} dto.Response{data=meeting.MeetingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id}/complete [post]
func (h *MeetingHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	// Body is optional; completion without notes is fine
	var req meeting.CompleteMeetingRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.meetingService.Complete(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Stats godoc
// @ID           meetingStats
// @Summary      Meeting counts by status
// @Tags         meetings
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /meetings/stats [get]
func (h *MeetingHandler) Stats(c *gin.Context) {
	stats, err := h.meetingService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// GenerateQuestions godoc
// @ID           generateMeetingQuestions
// @Summary      Generate preparation questions
// @Description  Generate AI preparation questions for a scheduled meeting, replacing any previous set
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Param        request body meeting.GenerateQuestionsRequest false "Generation options"
// @Success      200 {object} dto.Response{data=[]meeting.QuestionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id}/questions [post]
func (h *MeetingHandler) GenerateQuestions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	var req meeting.GenerateQuestionsRequest
	_ = c.ShouldBindJSON(&req)

	results, err := h.prepService.GenerateQuestions(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// ListQuestions godoc
// @ID           listMeetingQuestions
// @Summary      List preparation questions
// @Tags         meetings
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]meeting.QuestionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id}/questions [get]
func (h *MeetingHandler) ListQuestions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	results, err := h.prepService.ListQuestions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// SubmitNotes godoc
// @ID           submitMeetingNotes
// @Summary      Submit post-meeting notes
// @Description  Submit notes for a held meeting and produce the AI summary, action items and sentiment
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Param        request body meeting.SubmitNotesRequest true "Meeting notes"
// @Success      200 {object} dto.Response{data=meeting.IntelligenceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id}/notes [post]
func (h *MeetingHandler) SubmitNotes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	var req meeting.SubmitNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.prepService.SubmitNotes(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetIntelligence godoc
// @ID           getMeetingIntelligence
// @Summary      Get the post-meeting summary
// @Tags         meetings
// @Produce      json
// @Param        id path string true "Meeting ID" format(uuid)
// @Success      200 {object} dto.Response{data=meeting.IntelligenceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /meetings/{id}/intelligence [get]
func (h *MeetingHandler) GetIntelligence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meeting ID")
		return
	}

	result, err := h.prepService.GetIntelligence(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers meeting routes
func (h *MeetingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	meetings := rg.Group("/meetings")
	{
		meetings.POST("", h.Schedule)
		meetings.GET("", h.List)
		meetings.GET("/stats", h.Stats)
		meetings.GET("/:id", h.GetByID)
		meetings.PUT("/:id", h.Update)
		meetings.POST("/:id/reschedule", h.Reschedule)
		meetings.POST("/:id/cancel", h.Cancel)
		meetings.POST("/:id/complete", h.Complete)
		meetings.POST("/:id/questions", h.GenerateQuestions)
		meetings.GET("/:id/questions", h.ListQuestions)
		meetings.POST("/:id/notes", h.SubmitNotes)
		meetings.GET("/:id/intelligence", h.GetIntelligence)
	}
}
