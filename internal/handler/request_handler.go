package handler

import (
	"net/http"

	"reqflow/internal/middleware"
	"reqflow/internal/service"
	"reqflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.GET("", middleware.Authenticate(), h.ListRequests)
		requests.GET("/history", middleware.Authenticate(), h.ListHistory)
		requests.POST("", middleware.Authenticate(), h.CreateRequest)
		requests.PUT("/:id/approve", middleware.RequireRole(middleware.ApproverRoles()...), h.ApproveRequest)
		requests.PUT("/:id/reject", middleware.RequireRole(middleware.ApproverRoles()...), h.RejectRequest)
		requests.PUT("/:id/files/:fileId/letter-number", middleware.Authenticate(), h.SetLetterNumber)
	}
}

// ListRequests returns the role-scoped view: own requests for requesters,
// pending items for approvers.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	userID := currentUserID(c)

	requests, err := h.requestService.ListRequests(c.Request.Context(), userID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// ListHistory returns every request the user created or acted on
func (h *RequestHandler) ListHistory(c *gin.Context) {
	userID := currentUserID(c)

	requests, err := h.requestService.ListHistory(c.Request.Context(), userID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// CreateRequest submits a new request of the given type; it starts pending
// at the first role of the type's hierarchy
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID := currentUserID(c)

	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.CreateRequest(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ApproveRequest advances a pending request one step along its hierarchy
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	id := c.Param("id")
	userID := currentUserID(c)

	result, err := h.requestService.ApproveRequest(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectRequest terminates a pending request with a mandatory reason
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	id := c.Param("id")
	userID := currentUserID(c)

	var req service.RejectRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		// The reason may also arrive empty; the state machine validates it.
		req.Reason = ""
	}

	result, err := h.requestService.RejectRequest(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// SetLetterNumber fills in the set-once letter number of one file row on a
// file transfer request; only the requester may do this
func (h *RequestHandler) SetLetterNumber(c *gin.Context) {
	id := c.Param("id")
	fileID := c.Param("fileId")
	userID := currentUserID(c)

	var req service.SetLetterNumberDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "letter_number is required"))
		return
	}

	result, err := h.requestService.SetLetterNumber(c.Request.Context(), id, fileID, userID, req.LetterNumber)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)
	return idStr
}
