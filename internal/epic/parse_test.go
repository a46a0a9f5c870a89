package epic

import "testing"

func TestDecodeJSONBlock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    planResponse
	}{
		{
			name:  "bare object",
			input: `{"plan":"1. Do it","branchName":"feat/x"}`,
			want:  planResponse{Plan: "1. Do it", BranchName: "feat/x"},
		},
		{
			name:  "markdown fenced",
			input: "Here you go:\n```json\n{\"plan\":\"p\",\"branchName\":\"b\"}\n```\nLet me know!",
			want:  planResponse{Plan: "p", BranchName: "b"},
		},
		{
			name:  "leading and trailing prose",
			input: "Sure. {\"question\":\"which db?\"} Hope that helps.",
			want:  planResponse{Question: "which db?"},
		},
		{
			name:  "nested braces",
			input: `{"plan":"use {brackets} carefully","branchName":"feat/y"}`,
			want:  planResponse{Plan: "use {brackets} carefully", BranchName: "feat/y"},
		},
		{
			name:    "no object at all",
			input:   "I could not produce a plan.",
			wantErr: true,
		},
		{
			name:    "empty output",
			input:   "",
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `{"plan": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got planResponse
			err := decodeJSONBlock(tt.input, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("decodeJSONBlock() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeJSONBlock() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("decoded %+v, want %+v", got, tt.want)
			}
		})
	}
}
