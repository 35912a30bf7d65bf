package commsutil

import "encoding/json"

// RequestEnvelope is the flat {method, params} payload sent on the control
// subject.
type RequestEnvelope struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// EncodeRequest serializes a control request envelope.
func EncodeRequest(method string, params map[string]any) ([]byte, error) {
	return json.Marshal(RequestEnvelope{Method: method, Params: params})
}

// DecodeResponse deserializes a raw manager reply into a generic mapping.
func DecodeResponse(data []byte) (map[string]any, error) {
	var resp map[string]any
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
