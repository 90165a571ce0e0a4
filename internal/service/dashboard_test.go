package service

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/taskwise/internal/model"
)

// =========================================================================
// TEST HELPERS
// =========================================================================

func newTestDashboard(t *testing.T, now time.Time) (*DashboardService, *mockTaskRepo, *mockUserRepo) {
	t.Helper()
	tasks := newMockTaskRepo()
	users := newMockUserRepo()
	svc := NewDashboardService(tasks, users, nil, testLogger())
	svc.now = func() time.Time { return now }
	return svc, tasks, users
}

// seedTask inserts a task directly into the mock store.
func seedTask(t *testing.T, repo *mockTaskRepo, task model.Task) {
	t.Helper()
	if err := repo.Create(context.Background(), &task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}
}

// =========================================================================
// STATS TESTS
// =========================================================================

func TestStats_Empty(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestDashboard(t, now)

	stats, err := svc.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.TotalTasks != 0 || stats.CompletedTasks != 0 {
		t.Errorf("counts = %+v, want all zero", stats)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("CompletionRate = %v, want 0 with no tasks", stats.CompletionRate)
	}
}

func TestStats_CountsAndRate(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestDashboard(t, now)

	done := now.Add(-time.Hour)
	seedTask(t, repo, model.Task{
		UserID: "user-1", Name: "done", Status: model.StatusCompleted, CompletedAt: &done,
	})
	seedTask(t, repo, model.Task{
		UserID: "user-1", Name: "due today", Status: model.StatusPending,
		DueDate: timeptr(now.Add(2 * time.Hour)),
	})
	seedTask(t, repo, model.Task{
		UserID: "user-1", Name: "overdue", Status: model.StatusPending,
		DueDate: timeptr(now.AddDate(0, 0, -2)),
	})
	// Another user's task must not leak into the counts.
	seedTask(t, repo, model.Task{
		UserID: "user-2", Name: "foreign", Status: model.StatusPending,
	})

	stats, err := svc.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.TotalTasks != 3 {
		t.Errorf("TotalTasks = %d, want 3", stats.TotalTasks)
	}
	if stats.CompletedTasks != 1 {
		t.Errorf("CompletedTasks = %d, want 1", stats.CompletedTasks)
	}
	if stats.DueTodayTasks != 1 {
		t.Errorf("DueTodayTasks = %d, want 1", stats.DueTodayTasks)
	}
	if stats.OverdueTasks != 1 {
		t.Errorf("OverdueTasks = %d, want 1", stats.OverdueTasks)
	}
	// 100 × 1/3 rounded to two decimals.
	if stats.CompletionRate != 33.33 {
		t.Errorf("CompletionRate = %v, want 33.33", stats.CompletionRate)
	}
}

func TestStats_CompletedTaskNeverOverdue(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestDashboard(t, now)

	done := now.Add(-time.Hour)
	seedTask(t, repo, model.Task{
		UserID: "user-1", Name: "finished late", Status: model.StatusCompleted,
		DueDate: timeptr(now.AddDate(0, 0, -5)), CompletedAt: &done,
	})

	stats, err := svc.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.OverdueTasks != 0 {
		t.Errorf("OverdueTasks = %d, want 0 (completed tasks can't be overdue)", stats.OverdueTasks)
	}
}

// =========================================================================
// COMPLETIONS-BY-DAY TESTS
// =========================================================================

func TestCompletionsByDay_SevenZeroFilledDays(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) // a Wednesday
	svc, repo, _ := newTestDashboard(t, now)

	// Completed 2 days ago, twice today, and one outside the window.
	for _, delta := range []time.Duration{
		-48 * time.Hour,
		-time.Hour,
		-2 * time.Hour,
		-8 * 24 * time.Hour,
	} {
		done := now.Add(delta)
		seedTask(t, repo, model.Task{
			UserID: "user-1", Name: "done", Status: model.StatusCompleted, CompletedAt: &done,
		})
	}

	chart, err := svc.CompletionsByDay(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CompletionsByDay() error = %v", err)
	}

	if len(chart.Labels) != 7 || len(chart.Data) != 7 {
		t.Fatalf("chart has %d labels / %d points, want 7 each", len(chart.Labels), len(chart.Data))
	}

	// Oldest first, ending today: today is index 6, two days ago is index 4.
	want := []int{0, 0, 0, 0, 1, 0, 2}
	for i, got := range chart.Data {
		if got != want[i] {
			t.Errorf("Data = %v, want %v", chart.Data, want)
			break
		}
	}

	if chart.Labels[6] != "Wed" {
		t.Errorf("last label = %q, want %q", chart.Labels[6], "Wed")
	}
	if chart.Labels[0] != "Thu" {
		t.Errorf("first label = %q, want %q (six days back)", chart.Labels[0], "Thu")
	}
}

func TestCompletionsByDay_DSTTransitionDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2026-03-08 is the US spring-forward day, so the calendar day is only
	// 23 hours long. Anchoring the day window with a fixed 24h duration
	// would run it into 01:00 the next day and swallow this completion.
	now := time.Date(2026, 3, 8, 15, 0, 0, 0, loc)
	svc, repo, _ := newTestDashboard(t, now)

	onTheDay := time.Date(2026, 3, 8, 20, 0, 0, 0, loc)
	afterMidnight := time.Date(2026, 3, 9, 0, 30, 0, 0, loc)
	for _, done := range []time.Time{onTheDay, afterMidnight} {
		d := done
		seedTask(t, repo, model.Task{
			UserID: "user-1", Name: "done", Status: model.StatusCompleted, CompletedAt: &d,
		})
	}

	chart, err := svc.CompletionsByDay(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CompletionsByDay() error = %v", err)
	}

	// Only the on-the-day completion counts toward March 8 (index 6);
	// 00:30 on March 9 is outside the 7-day window entirely.
	if chart.Data[6] != 1 {
		t.Errorf("Data[6] = %d, want 1 (next-day completion mis-bucketed)", chart.Data[6])
	}
}

// =========================================================================
// CATEGORY DISTRIBUTION TESTS
// =========================================================================

func TestCategoryDistribution_GroupsWithUncategorised(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestDashboard(t, now)

	for _, c := range []string{"Work", "Work", "Home", ""} {
		seedTask(t, repo, model.Task{
			UserID: "user-1", Name: "t", Category: c, Status: model.StatusPending,
		})
	}

	chart, err := svc.CategoryDistribution(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CategoryDistribution() error = %v", err)
	}

	// Sorted labels: "", "Home", "Work".
	wantLabels := []string{"", "Home", "Work"}
	wantData := []int{1, 1, 2}
	if len(chart.Labels) != len(wantLabels) {
		t.Fatalf("Labels = %v, want %v", chart.Labels, wantLabels)
	}
	for i := range wantLabels {
		if chart.Labels[i] != wantLabels[i] || chart.Data[i] != wantData[i] {
			t.Errorf("chart = %v/%v, want %v/%v", chart.Labels, chart.Data, wantLabels, wantData)
			break
		}
	}
}

// =========================================================================
// DUE-TODAY AND RECENT TESTS
// =========================================================================

func TestTasksDueToday_SortedAscending(t *testing.T) {
	now := time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestDashboard(t, now)

	seedTask(t, repo, model.Task{
		UserID: "user-1", Name: "evening", Status: model.StatusPending,
		DueDate: timeptr(time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC)),
	})
	seedTask(t, repo, model.Task{
		UserID: "user-1", Name: "morning", Status: model.StatusPending,
		DueDate: timeptr(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)),
	})
	seedTask(t, repo, model.Task{
		UserID: "user-1", Name: "tomorrow", Status: model.StatusPending,
		DueDate: timeptr(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)),
	})

	tasks, err := svc.TasksDueToday(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("TasksDueToday() error = %v", err)
	}

	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].Name != "morning" || tasks[1].Name != "evening" {
		t.Errorf("order = [%s %s], want [morning evening]", tasks[0].Name, tasks[1].Name)
	}
}

func TestRecentTasks_CapsAtFive(t *testing.T) {
	now := time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestDashboard(t, now)

	for i := 0; i < 8; i++ {
		seedTask(t, repo, model.Task{
			UserID: "user-1", Name: "t", Status: model.StatusPending,
		})
	}

	tasks, err := svc.RecentTasks(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("RecentTasks() error = %v", err)
	}
	if len(tasks) != 5 {
		t.Errorf("got %d tasks, want 5", len(tasks))
	}
}

// =========================================================================
// ADMIN DASHBOARD TESTS
// =========================================================================

func TestAdmin_SummaryAndReportLists(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc, tasks, users := newTestDashboard(t, now)
	ctx := context.Background()

	alice := &model.User{Name: "Alice", Email: "alice@example.com", Role: model.RoleUser, Active: true}
	bob := &model.User{Name: "Bob", Email: "bob@example.com", Role: model.RoleUser, Active: true}
	root := &model.User{Name: "Root", Email: "root@example.com", Role: model.RoleAdmin, Active: true}
	for _, u := range []*model.User{alice, bob, root} {
		if err := users.CreateUser(ctx, u); err != nil {
			t.Fatalf("seeding user: %v", err)
		}
	}

	done := now.Add(-time.Hour)
	// Alice: one completed, one due tomorrow (critical), one overdue.
	seedTask(t, tasks, model.Task{
		UserID: alice.ID, Name: "done", Status: model.StatusCompleted, CompletedAt: &done,
	})
	seedTask(t, tasks, model.Task{
		UserID: alice.ID, Name: "critical", Status: model.StatusPending,
		DueDate: timeptr(now.AddDate(0, 0, 1)),
	})
	seedTask(t, tasks, model.Task{
		UserID: alice.ID, Name: "late", Status: model.StatusPending,
		DueDate: timeptr(now.AddDate(0, 0, -1)),
	})
	// Bob: one pending far in the future (neither list).
	seedTask(t, tasks, model.Task{
		UserID: bob.ID, Name: "someday", Status: model.StatusPending,
		DueDate: timeptr(now.AddDate(0, 0, 30)),
	})

	dash, err := svc.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin() error = %v", err)
	}

	if len(dash.UsersSummary) != 2 {
		t.Fatalf("UsersSummary has %d rows, want 2 (admins excluded)", len(dash.UsersSummary))
	}

	byName := make(map[string]UserTaskSummary)
	for _, row := range dash.UsersSummary {
		byName[row.Name] = row
	}
	a := byName["Alice"]
	if a.TotalTasks != 3 || a.CompletedTasks != 1 || a.PendingTasks != 2 || a.OverdueTasks != 1 {
		t.Errorf("Alice summary = %+v, want 3 total / 1 completed / 2 pending / 1 overdue", a)
	}

	if len(dash.Report.CriticalTasks) != 1 || dash.Report.CriticalTasks[0].Name != "critical" {
		t.Errorf("CriticalTasks = %+v, want just the task due tomorrow", dash.Report.CriticalTasks)
	}
	if len(dash.Report.OverdueTasks) != 1 || dash.Report.OverdueTasks[0].Name != "late" {
		t.Errorf("OverdueTasks = %+v, want just the past-due task", dash.Report.OverdueTasks)
	}
	if dash.Report.CriticalTasks[0].Owner.Email != "alice@example.com" {
		t.Errorf("critical task owner = %+v, want Alice", dash.Report.CriticalTasks[0].Owner)
	}
}

func TestAdmin_ReportJoinsElevatedOwners(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc, tasks, users := newTestDashboard(t, now)
	ctx := context.Background()

	// An account registered with role "admin" can still own tasks. It must
	// stay out of the per-user summary, but its tasks in the report lists
	// still carry the owner's details.
	root := &model.User{Name: "Root", Email: "root@example.com", Role: model.RoleAdmin, Active: true}
	if err := users.CreateUser(ctx, root); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	seedTask(t, tasks, model.Task{
		UserID: root.ID, Name: "late", Status: model.StatusPending,
		DueDate: timeptr(now.AddDate(0, 0, -1)),
	})

	dash, err := svc.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin() error = %v", err)
	}

	if len(dash.UsersSummary) != 0 {
		t.Errorf("UsersSummary has %d rows, want 0 (admins excluded)", len(dash.UsersSummary))
	}
	if len(dash.Report.OverdueTasks) != 1 {
		t.Fatalf("OverdueTasks = %+v, want the admin-owned task", dash.Report.OverdueTasks)
	}
	owner := dash.Report.OverdueTasks[0].Owner
	if owner.Name != "Root" || owner.Email != "root@example.com" {
		t.Errorf("overdue task owner = %+v, want Root's details", owner)
	}
}

func TestAdmin_EmptyListsNotNil(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestDashboard(t, now)

	dash, err := svc.Admin(context.Background())
	if err != nil {
		t.Fatalf("Admin() error = %v", err)
	}
	if dash.Report.CriticalTasks == nil || dash.Report.OverdueTasks == nil {
		t.Error("report lists should serialise as [] rather than null")
	}
}
