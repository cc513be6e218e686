package telegram

import (
	"encoding/json"
	"fmt"
)

// APIResponse общий конверт ответа Bot API
type APIResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// APIError ok=false в ответе Bot API
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error in %s: %s (code: %d)", e.Method, e.Description, e.Code)
}
