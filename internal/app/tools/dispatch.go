package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"roomfinder/internal/app/dto"
	availabilityapp "roomfinder/internal/app/handlers/availability"
	"roomfinder/internal/app/queries"
)

var (
	ErrUnknownTool = errors.New("tools: unknown tool")
	ErrBadArgs     = errors.New("tools: arguments are not a JSON object")
)

// Dispatcher executes tool calls against the query bus.
type Dispatcher struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Invoke runs one tool by name. The result is always a tool DTO, even when
// err is set, so it can be handed back to the model as is.
func (d Dispatcher) Invoke(ctx context.Context, name string, args []byte) (any, error) {
	switch name {
	case CheckRoomAvailability:
		var q availabilityapp.CheckRoomQuery
		if err := decodeArgs(args, &q); err != nil {
			return dto.CheckRoomResult{Error: err.Error()}, err
		}
		res, err := queries.Ask[availabilityapp.CheckRoomQuery, dto.CheckRoomResult](ctx, d.Queries, q)
		if err != nil && res.Error == "" {
			res = dto.CheckRoomResult{Error: err.Error()}
		}
		return res, err
	case FindAvailableWindows:
		var q availabilityapp.FindWindowsQuery
		if err := decodeArgs(args, &q); err != nil {
			return dto.WindowsResult{Error: err.Error()}, err
		}
		res, err := queries.Ask[availabilityapp.FindWindowsQuery, dto.WindowsResult](ctx, d.Queries, q)
		if err != nil && res.Error == "" {
			res = dto.WindowsResult{Error: err.Error()}
		}
		return res, err
	}
	err := fmt.Errorf("%w: %q", ErrUnknownTool, name)
	return map[string]string{"error": err.Error()}, err
}

// Call answers a model tool call with the tool message to append to the chat.
func (d Dispatcher) Call(ctx context.Context, call openai.ToolCall) openai.ChatCompletionMessage {
	res, err := d.Invoke(ctx, call.Function.Name, []byte(call.Function.Arguments))
	if err != nil && d.Logger != nil {
		d.Logger.WarnContext(ctx, "tool call failed", "tool", call.Function.Name, "call_id", call.ID, "error", err)
	}
	content, mErr := json.Marshal(res)
	if mErr != nil {
		content, _ = json.Marshal(map[string]string{"error": mErr.Error()})
	}
	return openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    string(content),
		Name:       call.Function.Name,
		ToolCallID: call.ID,
	}
}

func decodeArgs(args []byte, v any) error {
	args = bytes.TrimSpace(args)
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	return nil
}
