package ginserver

import (
	"errors"
	"io"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"

	availabilityapp "roomfinder/internal/app/handlers/availability"
	"roomfinder/internal/app/tools"
	"roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/matching"
	"roomfinder/internal/domain/shared/daterange"
)

const maxArgsBytes = 64 << 10

type ToolsHandler struct {
	Dispatcher tools.Dispatcher
}

func (h ToolsHandler) CheckRoomAvailability(c *gin.Context) {
	h.invoke(c, tools.CheckRoomAvailability)
}

func (h ToolsHandler) FindAvailableWindows(c *gin.Context) {
	h.invoke(c, tools.FindAvailableWindows)
}

// invoke passes the raw body as tool arguments; the DTO is returned even on
// error so callers always get the same shape.
func (h ToolsHandler) invoke(c *gin.Context, name string) {
	args, err := io.ReadAll(io.LimitReader(c.Request.Body, maxArgsBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.Dispatcher.Invoke(c.Request.Context(), name, args)
	c.JSON(statusFor(err), res)
}

// Call executes an OpenAI-style tool call and answers with the tool message
// to append to the conversation.
func (h ToolsHandler) Call(c *gin.Context) {
	var call openai.ToolCall
	if err := c.ShouldBindJSON(&call); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if call.Function.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "function.name is required"})
		return
	}
	c.JSON(http.StatusOK, h.Dispatcher.Call(c.Request.Context(), call))
}

func (h ToolsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": tools.Definitions()})
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case availabilityapp.IsInputError(err) != nil,
		errors.Is(err, tools.ErrBadArgs),
		errors.Is(err, tools.ErrUnknownTool),
		errors.Is(err, availability.ErrRangeTooLarge),
		errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, matching.ErrInvalidGuests),
		errors.Is(err, matching.ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, availabilityapp.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var _ ToolsHTTP = ToolsHandler{}
