package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("") is a well-known constant.
	if got := Sum(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestMatches(t *testing.T) {
	data := []byte("entry")
	sum := Sum(data)
	cases := []struct {
		expected string
		want     bool
	}{
		{"", true},
		{sum, true},
		{`"` + sum + `"`, true},
		{`W/"` + sum + `"`, true},
		{"deadbeef", false},
	}
	for _, c := range cases {
		if got := Matches(data, c.expected); got != c.want {
			t.Errorf("Matches(%q) = %v, want %v", c.expected, got, c.want)
		}
	}
}
