package uri

import "testing"

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://example.com/", true},
		{"https://example.com/openid?x=1", true},
		{"http://xri.net/=self*shupp", true},
		{"urn:oasis:names:tc:ebcore", true},
		{"mailto:someone@example.com", true},
		{"", false},
		{"not a url", false},
		{"/relative/path", false},
		{"example.com", false},
		{"http://", false},
		{"http:///path", false},
		{"http://example.com/a b", false},
		{"xri://=self", false},
		{"=self*shupp", false},
		{"http://example.com/\n", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidNamespace(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"xri://$xrds", true},
		{"xri://$xrd*($v*2.0)", true},
		{"http://openid.net/xmlns/1.0", true},
		{"xri://", false},
		{"openid", false},
	}

	for _, tt := range tests {
		if got := ValidNamespace(tt.in); got != tt.want {
			t.Errorf("ValidNamespace(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
