package markup

import (
	"testing"

	"github.com/matryer/is"
)

func TestText(t *testing.T) {
	for name, tc := range map[string]struct {
		in, want string
	}{
		"plain":          {"Statler Hall", "Statler Hall"},
		"empty":          {"", ""},
		"tags":           {"<p>Come <b>hungry</b>!</p>", "Come hungry!"},
		"entities":       {"Tom &amp; Jerry &ndash; live", "Tom & Jerry – live"},
		"nbsp":           {"Statler&nbsp;Hall 101", "Statler Hall 101"},
		"line breaks":    {"<p>one</p><p>two</p>line<br/>three", "one\ntwo\nline\nthree"},
		"script dropped": {"hi<script>alert(1)</script> there", "hi there"},
		"trim":           {"  <span> padded </span>  ", "padded"},
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(Text(tc.in), tc.want)
		})
	}
}
