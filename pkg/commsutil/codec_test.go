package commsutil

import (
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		params map[string]any
		want   string
	}{
		{
			name:   "no params",
			method: "status",
			want:   `{"method":"status"}`,
		},
		{
			name:   "with params",
			method: "queue_item_remove",
			params: map[string]any{"pos": "front"},
			want:   `{"method":"queue_item_remove","params":{"pos":"front"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeRequest(tt.method, tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %s, want %s", data, tt.want)
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"success":true,"msg":"","qsize":3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("expected success=true, got %v", resp["success"])
	}
	if resp["qsize"] != float64(3) {
		t.Errorf("expected qsize=3, got %v", resp["qsize"])
	}
}

func TestDecodeResponse_Invalid(t *testing.T) {
	if _, err := DecodeResponse([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
