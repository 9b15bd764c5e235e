package browser

import (
	"strings"
	"testing"
)

func TestElementPath(t *testing.T) {
	node := Query("div.jftiEf").Nth(3)
	body := node.Find("span.wiI7pd")

	if got, want := node.Path(), "div.jftiEf[3]"; got != want {
		t.Errorf("node path: got %q, want %q", got, want)
	}
	if got, want := body.Path(), "div.jftiEf[3] > span.wiI7pd[0]"; got != want {
		t.Errorf("child path: got %q, want %q", got, want)
	}
}

func TestElementJSQuotesSelectors(t *testing.T) {
	el := Query(`button[aria-label*="Reviews"]`)
	js := el.js()

	if !strings.Contains(js, `"button[aria-label*=\"Reviews\"]"`) {
		t.Errorf("selector not JSON-quoted: %s", js)
	}
	if !strings.HasSuffix(js, "(document)") {
		t.Errorf("top-level element should be scoped to document: %s", js)
	}
}

func TestFindDoesNotAliasParent(t *testing.T) {
	base := Query("div.review")
	a := base.Nth(1).Find("span")
	b := base.Nth(2).Find("span")
	if a.Path() == b.Path() {
		t.Errorf("children of different parents share a path: %q", a.Path())
	}
}

func TestResolveBinaryPrefersExplicit(t *testing.T) {
	got := resolveBinary(Chrome, "/opt/custom/chrome")
	if got != "/opt/custom/chrome" {
		t.Errorf("explicit binary: got %q, want %q", got, "/opt/custom/chrome")
	}
}
