package availability

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUpstream marks failures of the PMS or the room catalog, as opposed to
// bad input.
var ErrUpstream = errors.New("availability: upstream unavailable")

// InputError collects every problem found in a tool call's arguments.
type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}
	var inputError *InputError
	if errors.As(err, &inputError) {
		return inputError
	}
	return nil
}

func (ie *InputError) add(field string, err error) {
	ie.fields[field] = append(ie.fields[field], err.Error())
}

func (ie *InputError) empty() bool { return len(ie.fields) == 0 }

func (ie *InputError) orNil() error {
	if ie.empty() {
		return nil
	}
	return ie
}

func (ie *InputError) Error() string {
	keys := make([]string, 0, len(ie.fields))
	for k := range ie.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(ie.fields[k], "; ")))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

func upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

var errNotWired = errors.New("availability: catalog or fetcher not configured")
