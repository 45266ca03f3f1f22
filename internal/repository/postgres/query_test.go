package postgres

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/splax/shiftwatch/internal/repository"
)

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// assertPlaceholders checks that the query references exactly $1..$len(args).
func assertPlaceholders(t *testing.T, query string, args []any) {
	t.Helper()
	seen := make(map[int]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(query, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			t.Fatalf("bad placeholder %q", m[0])
		}
		seen[n] = true
	}
	if len(seen) != len(args) {
		t.Fatalf("query has %d placeholders for %d args: %s", len(seen), len(args), query)
	}
	for i := 1; i <= len(args); i++ {
		if !seen[i] {
			t.Fatalf("placeholder $%d missing: %s", i, query)
		}
	}
}

func TestScreenshotListQueryBindsLimit(t *testing.T) {
	query, args := screenshotListQuery(repository.ScreenshotQuery{
		Scope: repository.Scope{OrganizationID: "wo1"},
		Start: 0,
		End:   1000,
		Limit: 11,
	})
	assertPlaceholders(t, query, args)
	if !strings.HasSuffix(query, " LIMIT $4") {
		t.Fatalf("expected bound limit, got %s", query)
	}
	if args[3] != 11 {
		t.Fatalf("expected limit arg 11, got %v", args[3])
	}
}

func TestScreenshotListQueryWithFiltersAndCursor(t *testing.T) {
	after := int64(500)
	query, args := screenshotListQuery(repository.ScreenshotQuery{
		Scope:      repository.Scope{OrganizationID: "wo1", EmployeeID: "we1"},
		Start:      0,
		End:        1000,
		TaskIDs:    []string{"wt1"},
		ShiftIDs:   []string{"ws1", "ws2"},
		ProjectIDs: []string{"wp1"},
		Descending: true,
		After:      &after,
		Limit:      3,
	})
	assertPlaceholders(t, query, args)
	if !strings.Contains(query, "timestamp_ms < $") {
		t.Fatalf("descending cursor should use <: %s", query)
	}
	if !strings.Contains(query, "ORDER BY timestamp_ms DESC") {
		t.Fatalf("expected descending order: %s", query)
	}
}

func TestScreenshotListQueryWithoutLimit(t *testing.T) {
	query, args := screenshotListQuery(repository.ScreenshotQuery{
		Scope: repository.Scope{OrganizationID: "wo1"},
		End:   1000,
	})
	assertPlaceholders(t, query, args)
	if strings.Contains(query, "LIMIT") {
		t.Fatalf("unexpected limit: %s", query)
	}
}

func TestWindowBindsLimitAndOffset(t *testing.T) {
	var c conditions
	c.scope(repository.Scope{OrganizationID: "wo1"}, "organization_id", "employee_id")
	query := "SELECT id FROM shifts" + c.where() + c.window(repository.Page{Skip: 5, Limit: 10})
	assertPlaceholders(t, query, c.args)
}
