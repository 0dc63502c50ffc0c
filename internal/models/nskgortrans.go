package models

import "encoding/json"

// Envelope is the common shape of every api.nskgortrans.ru response. Data is
// kept raw so that callers can check it really is a list before decoding.
type Envelope struct {
	APIVersion json.RawMessage `json:"apiVersion"`
	Data       json.RawMessage `json:"data"`
}
