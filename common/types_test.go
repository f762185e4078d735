package common

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
)

func TestDeleteResponseJSON(t *testing.T) {
	r := DeleteResponse{
		DeleteResult: cookielib.DeleteResult{Deleted: 2, Regenerated: 1},
		Filtered:     3,
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"deleted":2`, `"regenerated":1`, `"filtered":3`} {
		if !strings.Contains(s, want) {
			t.Errorf("%s missing %s", s, want)
		}
	}
	if strings.Contains(s, "skipped") {
		t.Errorf("empty skipped list should be omitted: %s", s)
	}
}
