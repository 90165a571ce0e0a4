package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sakif/taskwise/internal/cache"
	"github.com/sakif/taskwise/internal/model"
	"github.com/sakif/taskwise/internal/repository"
)

// recentTaskLimit is how many tasks the recent-tasks card shows.
const recentTaskLimit = 5

// criticalWindow is how far ahead a pending task's due date may be for the
// admin report to call it critical.
const criticalWindow = 48 * time.Hour

// statsTTL note: the TTL itself lives on the cache (set at wiring time);
// the key layout is what this package owns.
func dashboardStatsKey(ownerID string) string {
	return "dashboard:stats:" + ownerID
}

// Stats is the per-user dashboard summary.
type Stats struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionRate float64 `json:"completionRate"`
	DueTodayTasks  int     `json:"dueTodayTasks"`
	OverdueTasks   int     `json:"overdueTasks"`
}

// ChartData is a labels/data pair in the shape charting libraries expect.
type ChartData struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// UserTaskSummary is one row of the admin dashboard: a non-admin user with
// their task counts.
type UserTaskSummary struct {
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
	PendingTasks   int    `json:"pendingTasks"`
	OverdueTasks   int    `json:"overdueTasks"`
}

// OwnedTask is a task joined with its owner's name/email for the cross-user
// admin lists.
type OwnedTask struct {
	model.Task
	Owner OwnerRef `json:"owner"`
}

// OwnerRef is the slice of the owning user the admin lists expose.
type OwnerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminDashboard is the full admin-scope report.
type AdminDashboard struct {
	UsersSummary []UserTaskSummary `json:"usersSummary"`
	Report       AdminReportLists  `json:"report"`
}

// AdminReportLists holds the two cross-user task lists.
type AdminReportLists struct {
	CriticalTasks []OwnedTask `json:"criticalTasks"`
	OverdueTasks  []OwnedTask `json:"overdueTasks"`
}

// DashboardService computes per-user and cross-user statistics by querying
// the task store. All aggregation is a single read of the relevant tasks
// followed by predicates in memory — one store round trip per request.
//
// Stats is the one aggregate served through the Redis cache-aside layer;
// the singleflight group collapses concurrent misses for the same user so a
// cold cache costs one store read, not one per in-flight request.
type DashboardService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	cache  *cache.Cache
	sf     singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

// NewDashboardService creates a DashboardService. The cache may be nil,
// which disables caching entirely.
func NewDashboardService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	c *cache.Cache,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		tasks:  tasks,
		users:  users,
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
}

// Stats returns the owner's summary counts.
//
// completionRate is 100×completed/total rounded to two decimals, and 0 when
// there are no tasks at all (never a division by zero).
func (s *DashboardService) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	key := dashboardStatsKey(ownerID)

	var cached Stats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		stats, err := s.computeStats(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, key, stats)
		return stats, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Stats), nil
}

func (s *DashboardService) computeStats(ctx context.Context, ownerID string) (*Stats, error) {
	tasks, err := s.tasks.List(ctx, ownerID, repository.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading tasks for stats: %w", err)
	}

	now := s.now()
	dayStart, dayEnd := startOfDay(now), endOfDay(now)

	stats := &Stats{TotalTasks: len(tasks)}
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			stats.CompletedTasks++
			continue
		}
		if t.DueDate == nil {
			continue
		}
		switch {
		case t.DueDate.Before(dayStart):
			stats.OverdueTasks++
		case !t.DueDate.Before(dayStart) && !t.DueDate.After(dayEnd):
			stats.DueTodayTasks++
		}
	}

	if stats.TotalTasks > 0 {
		stats.CompletionRate = round2(100 * float64(stats.CompletedTasks) / float64(stats.TotalTasks))
	}

	return stats, nil
}

// CompletionsByDay returns completion counts for the trailing 7 calendar
// days, oldest first and ending today. Always exactly 7 pairs; days with no
// completions report zero. Labels are day-of-week abbreviations ("Mon").
func (s *DashboardService) CompletionsByDay(ctx context.Context, ownerID string) (*ChartData, error) {
	tasks, err := s.tasks.List(ctx, ownerID, repository.TaskFilter{
		Status: model.StatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("loading tasks for completions chart: %w", err)
	}

	today := startOfDay(s.now())
	chart := &ChartData{
		Labels: make([]string, 0, 7),
		Data:   make([]int, 0, 7),
	}

	for i := 6; i >= 0; i-- {
		dayStart := today.AddDate(0, 0, -i)
		// AddDate, not Add(24h): on DST-transition days the calendar day
		// is 23 or 25 hours long and a fixed duration would mis-bucket
		// completions near midnight.
		dayEnd := dayStart.AddDate(0, 0, 1)

		count := 0
		for _, t := range tasks {
			if t.CompletedAt == nil {
				continue
			}
			done := t.CompletedAt.In(today.Location())
			if !done.Before(dayStart) && done.Before(dayEnd) {
				count++
			}
		}

		chart.Labels = append(chart.Labels, dayStart.Weekday().String()[:3])
		chart.Data = append(chart.Data, count)
	}

	return chart, nil
}

// CategoryDistribution groups the owner's tasks by category value and
// reports a count per group. Uncategorised tasks form their own group under
// the empty label. Labels are sorted for a stable response shape.
func (s *DashboardService) CategoryDistribution(ctx context.Context, ownerID string) (*ChartData, error) {
	tasks, err := s.tasks.List(ctx, ownerID, repository.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading tasks for category chart: %w", err)
	}

	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Category]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	chart := &ChartData{
		Labels: labels,
		Data:   make([]int, 0, len(labels)),
	}
	for _, label := range labels {
		chart.Data = append(chart.Data, counts[label])
	}

	return chart, nil
}

// TasksDueToday returns the owner's pending tasks due within the current
// day, ascending by due date.
func (s *DashboardService) TasksDueToday(ctx context.Context, ownerID string) ([]model.Task, error) {
	now := s.now()
	from, to := startOfDay(now), endOfDay(now)

	tasks, err := s.tasks.List(ctx, ownerID, repository.TaskFilter{
		Status:  model.StatusPending,
		DueFrom: &from,
		DueTo:   &to,
	})
	if err != nil {
		return nil, fmt.Errorf("loading tasks due today: %w", err)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})

	return tasks, nil
}

// RecentTasks returns the owner's 5 most recently updated tasks, falling
// back to creation time as the tiebreaker.
func (s *DashboardService) RecentTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.tasks.Recent(ctx, ownerID, recentTaskLimit)
	if err != nil {
		return nil, fmt.Errorf("loading recent tasks: %w", err)
	}
	return tasks, nil
}

// Admin computes the cross-user report: per-user counts for every non-admin
// user, plus the critical list (pending, due within the next 2 days
// inclusive of now) and the overdue list (pending, due strictly before
// now), each joined with the owning user's name and email.
//
// Note the admin definition of overdue (due before *now*) intentionally
// differs from the per-user dashboard's (due before start of day) — both
// match the behaviour of the system this replaces.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	users, err := s.users.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("loading users for admin dashboard: %w", err)
	}

	// Accounts registered with an elevated role stay out of the per-user
	// summary, but their tasks still land in the report lists below, so
	// the owner join has to cover every account.
	elevated, err := s.users.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("loading elevated users for admin dashboard: %w", err)
	}

	allTasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks for admin dashboard: %w", err)
	}

	byOwner := make(map[string][]model.Task)
	for _, t := range allTasks {
		byOwner[t.UserID] = append(byOwner[t.UserID], t)
	}

	now := s.now()
	criticalCutoff := now.Add(criticalWindow)

	summary := make([]UserTaskSummary, 0, len(users))
	owners := make(map[string]OwnerRef, len(users)+len(elevated))
	for _, u := range elevated {
		owners[u.ID] = OwnerRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	for _, u := range users {
		owners[u.ID] = OwnerRef{ID: u.ID, Name: u.Name, Email: u.Email}

		row := UserTaskSummary{UserID: u.ID, Name: u.Name, Email: u.Email}
		for _, t := range byOwner[u.ID] {
			row.TotalTasks++
			switch t.Status {
			case model.StatusCompleted:
				row.CompletedTasks++
			case model.StatusPending:
				row.PendingTasks++
				if t.DueDate != nil && t.DueDate.Before(now) {
					row.OverdueTasks++
				}
			}
		}
		summary = append(summary, row)
	}

	report := AdminReportLists{
		CriticalTasks: []OwnedTask{},
		OverdueTasks:  []OwnedTask{},
	}
	for _, t := range allTasks {
		if t.Status != model.StatusPending || t.DueDate == nil {
			continue
		}
		owned := OwnedTask{Task: t, Owner: owners[t.UserID]}
		switch {
		case t.DueDate.Before(now):
			report.OverdueTasks = append(report.OverdueTasks, owned)
		case !t.DueDate.After(criticalCutoff):
			report.CriticalTasks = append(report.CriticalTasks, owned)
		}
	}

	return &AdminDashboard{UsersSummary: summary, Report: report}, nil
}
