package tools

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"roomfinder/internal/domain/availability"
)

const (
	CheckRoomAvailability = "check_room_availability"
	FindAvailableWindows  = "find_available_windows"
)

// Definitions returns the function schemas the conversational front-end
// registers with its model.
func Definitions() []openai.Tool {
	date := func(desc string) jsonschema.Definition {
		return jsonschema.Definition{Type: jsonschema.String, Description: desc + " (YYYY-MM-DD)"}
	}
	guests := jsonschema.Definition{Type: jsonschema.Integer, Description: "Number of guests, at least 1"}
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name: CheckRoomAvailability,
				Description: "Find rooms for an exact stay. Returns the best match category " +
					"(PerfectMatch, DatesMatchExtendBed, DatesMatchLargeRoom, DurationMatchAlternativeDates) " +
					"with priced results, or null when nothing is available.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"guests":         guests,
						"check_in_date":  date("Check-in date"),
						"check_out_date": date("Check-out date, after check-in"),
					},
					Required: []string{"guests", "check_in_date", "check_out_date"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        FindAvailableWindows,
				Description: fmt.Sprintf("Find rooms with a free stretch of the given number of nights inside a search window of at most %d days.", availability.MaxSpanDays),
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"search_start": date("First day of the search window"),
						"search_end":   date("Last day of the search window"),
						"duration": {
							Type:        jsonschema.Integer,
							Description: "Length of stay in nights, at least 1",
						},
						"guests": guests,
					},
					Required: []string{"search_start", "search_end", "duration", "guests"},
				},
			},
		},
	}
}
