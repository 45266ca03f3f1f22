package screenshot

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
	"github.com/splax/shiftwatch/internal/repository"
	"github.com/splax/shiftwatch/internal/repository/memory"
	"github.com/splax/shiftwatch/internal/service/activity"
	"github.com/splax/shiftwatch/internal/service/membership"
)

var (
	admin  = domain.Principal{Kind: domain.PrincipalAdmin, ID: "wa1", OrganizationID: "wo1"}
	worker = domain.Principal{Kind: domain.PrincipalEmployee, ID: "we1", OrganizationID: "wo1"}
	peer   = domain.Principal{Kind: domain.PrincipalEmployee, ID: "we2", OrganizationID: "wo1"}
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	_ = store.CreateEmployee(ctx, &domain.Employee{ID: "we1", Email: "one@example.com", OrganizationID: "wo1"})
	_ = store.CreateEmployee(ctx, &domain.Employee{ID: "we2", Email: "two@example.com", OrganizationID: "wo1"})
	_ = store.CreateShift(ctx, &domain.Shift{ID: "ws1", Start: 50, EmployeeID: "we1", OrganizationID: "wo1", ProjectID: "wp1", TaskID: "wt1"})
	_ = store.CreateShift(ctx, &domain.Shift{ID: "ws2", Start: 50, EmployeeID: "we2", OrganizationID: "wo1"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, store, store, membership.New(store, logger), activity.Discard{}, logger), store
}

func seedShots(t *testing.T, store *memory.Store, shots ...domain.Screenshot) {
	t.Helper()
	for _, s := range shots {
		shot := s
		if err := store.CreateScreenshot(context.Background(), &shot); err != nil {
			t.Fatalf("seed screenshot: %v", err)
		}
	}
}

func TestPaginateWalksCursor(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedShots(t, store,
		domain.Screenshot{ID: "wc1", Timestamp: 100, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
		domain.Screenshot{ID: "wc2", Timestamp: 200, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
		domain.Screenshot{ID: "wc3", Timestamp: 300, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
	)

	first, err := svc.Paginate(ctx, admin, PageQuery{Start: 0, End: 1000, Limit: 2})
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}
	if len(first.Data) != 2 || first.Data[0].Timestamp != 100 || first.Data[1].Timestamp != 200 {
		t.Fatalf("unexpected first page %+v", first.Data)
	}
	if first.Next == nil || *first.Next != "200" {
		t.Fatalf("expected next cursor 200, got %v", first.Next)
	}

	second, err := svc.Paginate(ctx, admin, PageQuery{Start: 0, End: 1000, Limit: 2, Next: *first.Next})
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}
	if len(second.Data) != 1 || second.Data[0].Timestamp != 300 || second.Next != nil {
		t.Fatalf("unexpected second page %+v next=%v", second.Data, second.Next)
	}
}

func TestPaginateDescendingAndMalformedCursor(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedShots(t, store,
		domain.Screenshot{ID: "wc1", Timestamp: 100, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
		domain.Screenshot{ID: "wc2", Timestamp: 200, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
		domain.Screenshot{ID: "wc3", Timestamp: 300, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
	)

	page, err := svc.Paginate(ctx, admin, PageQuery{Start: 0, End: 1000, Limit: 2, SortBy: SortTimestampDesc})
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}
	if page.Data[0].Timestamp != 300 || page.Next == nil || *page.Next != "200" {
		t.Fatalf("unexpected descending page %+v", page)
	}
	rest, _ := svc.Paginate(ctx, admin, PageQuery{Start: 0, End: 1000, Limit: 2, SortBy: SortTimestampDesc, Next: "200"})
	if len(rest.Data) != 1 || rest.Data[0].Timestamp != 100 || rest.Next != nil {
		t.Fatalf("unexpected descending tail %+v", rest)
	}

	restart, _ := svc.Paginate(ctx, admin, PageQuery{Start: 0, End: 1000, Next: "abc"})
	if len(restart.Data) != 3 || restart.Next != nil {
		t.Fatalf("expected malformed cursor to restart, got %+v", restart)
	}
}

func TestPaginateFiltersAndScope(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedShots(t, store,
		domain.Screenshot{ID: "wc1", Timestamp: 100, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1", TaskID: "wt1"},
		domain.Screenshot{ID: "wc2", Timestamp: 200, ShiftID: "ws2", EmployeeID: "we2", OrganizationID: "wo1", TaskID: "wt2"},
		domain.Screenshot{ID: "wc3", Timestamp: 300, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1", TaskID: "wt3"},
	)

	page, _ := svc.Paginate(ctx, admin, PageQuery{Start: 0, End: 1000, TaskIDs: "wt1, wt2"})
	if len(page.Data) != 2 {
		t.Fatalf("expected OR filter to match two, got %+v", page.Data)
	}
	own, _ := svc.Paginate(ctx, peer, PageQuery{Start: 0, End: 1000})
	if len(own.Data) != 1 || own.Data[0].EmployeeID != "we2" {
		t.Fatalf("expected employee scope, got %+v", own.Data)
	}
	empty, _ := svc.Paginate(ctx, admin, PageQuery{Start: 500, End: 1000})
	if empty.Data == nil || len(empty.Data) != 0 || empty.Next != nil {
		t.Fatalf("expected empty page, got %+v", empty)
	}
}

func TestListDefaultsLimit(t *testing.T) {
	svc, store := newTestService(t)
	for i := 0; i < 20; i++ {
		seedShots(t, store, domain.Screenshot{ID: "wc" + string(rune('a'+i)), Timestamp: int64(100 + i), ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"})
	}
	shots, err := svc.List(context.Background(), worker, ListQuery{Start: 0, End: 1000})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(shots) != DefaultListLimit {
		t.Fatalf("expected %d screenshots, got %d", DefaultListLimit, len(shots))
	}
}

func TestCreateChecksShiftOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	shot, err := svc.Create(ctx, worker, CreateInput{Timestamp: 120, ShiftID: "ws1", Title: "<b>Editor</b>"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if shot.ProjectID != "wp1" || shot.TaskID != "wt1" || shot.Title != "Editor" || !shot.Active {
		t.Fatalf("unexpected screenshot %+v", shot)
	}
	if _, err := svc.Create(ctx, worker, CreateInput{Timestamp: 120, ShiftID: "ws-missing"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected shift not found, got %v", err)
	}
	if _, err := svc.Create(ctx, worker, CreateInput{Timestamp: 120, ShiftID: "ws2"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected foreign shift to be refused, got %v", err)
	}
	if _, err := svc.Create(ctx, worker, CreateInput{Timestamp: 120, ShiftID: "ws2", EmployeeID: "we2"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected other employee to be refused, got %v", err)
	}
}

func TestDeleteIncrementsShiftCounter(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedShots(t, store, domain.Screenshot{ID: "wc1", Timestamp: 100, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"})

	if err := svc.Delete(ctx, peer, "wc1"); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected peer to be refused, got %v", err)
	}
	if err := svc.Delete(ctx, worker, "wc1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	shift, _ := store.GetShiftByID(ctx, "ws1")
	if shift.DeletedScreenshots != 1 {
		t.Fatalf("expected counter 1, got %d", shift.DeletedScreenshots)
	}
	if _, err := store.GetScreenshotByID(ctx, "wc1"); err != repository.ErrNotFound {
		t.Fatalf("expected screenshot removed, got %v", err)
	}
	if err := svc.Delete(ctx, worker, "wc1"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestPaginateForeignFiltersAreForbidden(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_ = store.CreateProject(ctx, &domain.Project{ID: "wp-o2", Name: "Elsewhere", OrganizationID: "wo2"})
	_ = store.CreateTask(ctx, &domain.Task{ID: "wt-o2", Name: "Foreign", ProjectID: "wp-o2", OrganizationID: "wo2"})
	_ = store.CreateShift(ctx, &domain.Shift{ID: "ws-o2", Start: 50, EmployeeID: "we-o2", OrganizationID: "wo2"})

	queries := []PageQuery{
		{Start: 0, End: 1000, ProjectIDs: "wp-o2"},
		{Start: 0, End: 1000, TaskIDs: "wt-missing,wt-o2"},
		{Start: 0, End: 1000, ShiftIDs: "ws1, ws-o2"},
	}
	for _, q := range queries {
		page, err := svc.Paginate(ctx, admin, q)
		if !apperr.Is(err, apperr.KindForbidden) {
			t.Fatalf("query %+v: expected forbidden, got %+v err=%v", q, page, err)
		}
	}
}

func TestPaginateSharedTimestampAcrossPages(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedShots(t, store,
		domain.Screenshot{ID: "wc1", Timestamp: 100, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
		domain.Screenshot{ID: "wc2", Timestamp: 100, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
		domain.Screenshot{ID: "wc3", Timestamp: 200, ShiftID: "ws1", EmployeeID: "we1", OrganizationID: "wo1"},
	)

	first, err := svc.Paginate(ctx, admin, PageQuery{Start: 0, End: 1000, Limit: 1})
	if err != nil || first.Next == nil || *first.Next != "100" {
		t.Fatalf("unexpected first page %+v err=%v", first, err)
	}
	// The cursor is the bare timestamp, so the second row sharing it is skipped.
	second, _ := svc.Paginate(ctx, admin, PageQuery{Start: 0, End: 1000, Limit: 1, Next: *first.Next})
	if len(second.Data) != 1 || second.Data[0].ID != "wc3" {
		t.Fatalf("expected wc3 after cursor 100, got %+v", second.Data)
	}
}
