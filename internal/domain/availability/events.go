package availability

import "time"

// Checked is recorded after every check_room_availability call that reached the PMS.
type Checked struct {
	SearchID  string    `json:"search_id"`
	Guests    int       `json:"guests"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	MatchType string    `json:"match_type"`
	Results   int       `json:"results"`
	At        time.Time `json:"occurred_at"`
}

func (e Checked) EventName() string     { return "availability.checked" }
func (e Checked) AggregateID() string   { return e.SearchID }
func (e Checked) OccurredAt() time.Time { return e.At }

// WindowsSearched is recorded after every find_available_windows call.
type WindowsSearched struct {
	SearchID    string    `json:"search_id"`
	SearchStart string    `json:"search_start"`
	SearchEnd   string    `json:"search_end"`
	Duration    int       `json:"duration"`
	Guests      int       `json:"guests"`
	Results     int       `json:"results"`
	At          time.Time `json:"occurred_at"`
}

func (e WindowsSearched) EventName() string     { return "availability.windows_searched" }
func (e WindowsSearched) AggregateID() string   { return e.SearchID }
func (e WindowsSearched) OccurredAt() time.Time { return e.At }

// SchemaDrift is recorded for every window whose payload version differed
// from the expected one.
type SchemaDrift struct {
	SearchID    string    `json:"search_id"`
	Expected    string    `json:"expected"`
	Received    string    `json:"received"`
	WindowStart string    `json:"window_start"`
	At          time.Time `json:"occurred_at"`
}

func (e SchemaDrift) EventName() string     { return "pms.schema_drift" }
func (e SchemaDrift) AggregateID() string   { return e.SearchID }
func (e SchemaDrift) OccurredAt() time.Time { return e.At }
