package editable

import (
	"testing"

	"github.com/haierkeys/site-text-service/internal/domain"
)

func TestTag(t *testing.T) {
	for _, e := range domain.Elements() {
		if got := Tag(e); got != string(e) {
			t.Errorf("Tag(%q) = %q", e, got)
		}
	}
	if got := Tag(domain.Element("script")); got != "p" {
		t.Errorf("Tag(script) = %q, want p", got)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		view View
		want string
	}{
		{
			name: "viewing",
			view: View{ID: "a", Element: domain.ElementSpan, State: StateViewing, Displayed: "Hi"},
			want: `<span data-text-id="a">Hi</span>`,
		},
		{
			name: "edit mode marker",
			view: View{ID: "a", Element: domain.ElementLi, State: StateViewing, Displayed: "Hi", EditMode: true},
			want: `<li data-text-id="a" data-editable="true">Hi</li>`,
		},
		{
			name: "editing shows buffer",
			view: View{ID: "a", Element: domain.ElementP, State: StateEditing, Displayed: "Hi", Buffer: "Hello", EditMode: true},
			want: `<p data-text-id="a" data-editable="true" contenteditable="true">Hello</p>`,
		},
		{
			name: "saving",
			view: View{ID: "a", Element: domain.ElementH2, State: StateSaving, Displayed: "Next", EditMode: true},
			want: `<h2 data-text-id="a" data-editable="true" aria-busy="true">Next</h2>`,
		},
		{
			name: "text and attributes escaped",
			view: View{ID: `x"y`, Element: domain.ElementLabel, ClassName: "a<b", Displayed: `<script>alert("x")</script>`},
			want: `<label data-text-id="x&#34;y" class="a&lt;b">&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</label>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.view); got != tt.want {
				t.Errorf("Render() = %s, want %s", got, tt.want)
			}
		})
	}
}
