package testutils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/mock/gomock"
)

// NewPayloadMatcher matches a *message.Message whose JSON payload equals
// expected once both are decoded into generic maps.
func NewPayloadMatcher(expected any) gomock.Matcher {
	return &PayloadMatcher{expected: expected}
}

// PayloadMatcher is a gomock.Matcher that matches a message.Message based on its payload.
type PayloadMatcher struct {
	expected any
	diff     string
}

func (m *PayloadMatcher) Matches(x any) bool {
	msg, ok := x.(*message.Message)
	if !ok || msg == nil {
		return false
	}

	var actual map[string]any
	if err := json.Unmarshal(msg.Payload, &actual); err != nil {
		m.diff = fmt.Sprintf("payload is not a JSON object: %v", err)
		return false
	}

	expected, err := convertToMap(m.expected)
	if err != nil {
		m.diff = fmt.Sprintf("expected payload does not encode: %v", err)
		return false
	}

	m.diff = cmp.Diff(expected, actual)
	return m.diff == ""
}

func (m *PayloadMatcher) String() string {
	if m.diff != "" {
		return fmt.Sprintf("matches message with payload %+v (-want +got):\n%s", m.expected, m.diff)
	}
	return fmt.Sprintf("matches message with payload %+v", m.expected)
}

// Helper function to convert expected payload to map[string]any
func convertToMap(payload any) (map[string]any, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var payloadMap map[string]any
	if err := json.Unmarshal(payloadJSON, &payloadMap); err != nil {
		return nil, err
	}
	return payloadMap, nil
}

// ContainsStringMatcher is a custom matcher that checks if a string contains a specific substring.
type ContainsStringMatcher struct {
	Expected string
}

// Matches returns whether x is a string, or an error whose text, contains the
// expected substring.
func (m ContainsStringMatcher) Matches(x any) bool {
	switch v := x.(type) {
	case string:
		return strings.Contains(v, m.Expected)
	case error:
		return strings.Contains(v.Error(), m.Expected)
	default:
		return false
	}
}

// String returns a description of the matcher.
func (m ContainsStringMatcher) String() string {
	return fmt.Sprintf("contains the substring %q", m.Expected)
}

// ContainsString is a helper function to create a ContainsStringMatcher.
func ContainsString(expected string) gomock.Matcher {
	return &ContainsStringMatcher{Expected: expected}
}
