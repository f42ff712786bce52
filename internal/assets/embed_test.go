package assets

import (
	"strings"
	"testing"
)

func TestDefaultTerms(t *testing.T) {
	if len(DefaultTerms) == 0 {
		t.Fatal("DefaultTerms is empty")
	}
	if !strings.HasPrefix(string(DefaultTerms), "# Terms of Service") {
		t.Errorf("DefaultTerms should start with a title, got %q", string(DefaultTerms[:20]))
	}
}
