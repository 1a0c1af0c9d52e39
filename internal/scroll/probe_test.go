package scroll

import "testing"

func TestNeedsDeferredRender(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    bool
	}{
		{"nil content", nil, false},
		{"empty", staticContent{}, false},
		{"all rendered", staticContent{{ID: "a", Rendered: true}, {ID: "b", Rendered: true}}, false},
		{"unrendered block", staticContent{{ID: "a", Rendered: true}, {ID: "b"}}, true},
		{"streaming block only", staticContent{{ID: "a", Rendered: true}, {ID: "b", Streaming: true}}, false},
		{"streaming and unrendered", staticContent{{ID: "a", Streaming: true}, {ID: "b"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsDeferredRender(tt.content); got != tt.want {
				t.Errorf("NeedsDeferredRender = %v, want %v", got, tt.want)
			}
		})
	}
}
