// Package roster owns the event collection. It is the only place that
// mutates events: every write runs under one exclusive lock across the whole
// collection, because a confirmed move touches several events at once and
// conflict detection is inherently cross-event. Reads always recompute from
// a fresh snapshot; nothing derived is ever cached.
package roster

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dbritton/callsheet/internal/assignment"
	"github.com/dbritton/callsheet/internal/metrics"
	"github.com/dbritton/callsheet/internal/model"
	"github.com/dbritton/callsheet/internal/schedule"
	"github.com/dbritton/callsheet/internal/store"
)

var ErrDecisionNotFound = errors.New("decision not found")

// NotifyFunc is called after every committed mutation so the transport layer
// can push updates to connected clients.
type NotifyFunc func(entity, action string, id int64)

type Service struct {
	mu        sync.Mutex
	events    *store.EventStore
	staff     *store.StaffStore
	decisions map[string]*assignment.MoveDecision
	notify    NotifyFunc
	logger    *slog.Logger
}

func NewService(events *store.EventStore, staff *store.StaffStore, notify NotifyFunc, logger *slog.Logger) *Service {
	if notify == nil {
		notify = func(string, string, int64) {}
	}
	return &Service{
		events:    events,
		staff:     staff,
		decisions: make(map[string]*assignment.MoveDecision),
		notify:    notify,
		logger:    logger,
	}
}

// EventView pairs an event with its derived status and conflicts for one
// read of the day.
type EventView struct {
	*model.Event
	Status    schedule.Status     `json:"status"`
	Conflicts []schedule.Conflict `json:"conflicts,omitempty"`
}

// DayView is everything a day screen needs: per-event status plus the
// cluster partition.
type DayView struct {
	Date     string           `json:"date"`
	Events   []EventView      `json:"events"`
	Clusters [][]*model.Event `json:"clusters"`
	Clear    []*model.Event   `json:"clear"`
}

// DayView loads one day's events and derives statuses and clusters.
func (s *Service) DayView(date string) (*DayView, error) {
	events, err := s.events.ListByDate(date)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	clusters, clear := schedule.Cluster(events)
	metrics.ClusterDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.ConflictClusters.Set(float64(len(clusters)))
	conflicted := 0
	for _, c := range clusters {
		conflicted += len(c)
	}
	metrics.ConflictedEvents.Set(float64(conflicted))

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		conflicts := schedule.ConflictsOf(e, events)
		status := schedule.ComputeStatus(e, events)
		views = append(views, EventView{Event: e, Status: status, Conflicts: conflicts})
	}

	return &DayView{Date: date, Events: views, Clusters: clusters, Clear: clear}, nil
}

// Filter narrows a range listing the way the planning board does.
type Filter struct {
	Search     string
	StaffIDs   []int64
	Companies  []string
	EventTypes []string
	Statuses   []schedule.Status
}

// ListRange returns events in [from, to] matching the filter, each with its
// status derived against its own day.
func (s *Service) ListRange(from, to string, filter Filter) ([]EventView, error) {
	events, err := s.events.ListByDateRange(from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]*model.Event)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		status := schedule.ComputeStatus(e, byDate[e.Date])
		if !matches(e, status, filter) {
			continue
		}
		views = append(views, EventView{Event: e, Status: status})
	}
	return views, nil
}

func matches(e *model.Event, status schedule.Status, f Filter) bool {
	if f.Search != "" {
		search := strings.ToLower(f.Search)
		found := strings.Contains(strings.ToLower(e.Name), search) ||
			strings.Contains(strings.ToLower(e.Company), search)
		for _, a := range e.AssignedStaff {
			if found {
				break
			}
			found = strings.Contains(strings.ToLower(a.Name), search)
		}
		if !found {
			return false
		}
	}
	if len(f.StaffIDs) > 0 {
		found := false
		for _, id := range f.StaffIDs {
			if e.HasStaff(id) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Companies) > 0 && !slices.Contains(f.Companies, e.Company) {
		return false
	}
	if len(f.EventTypes) > 0 && !slices.Contains(f.EventTypes, e.EventType) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, status) {
		return false
	}
	return true
}

// EventConflicts returns the conflict details for one event against its day.
func (s *Service) EventConflicts(eventID int64) (*model.Event, []schedule.Conflict, error) {
	event, day, err := s.eventAndDay(eventID)
	if err != nil {
		return nil, nil, err
	}
	return event, schedule.ConflictsOf(event, day), nil
}

// EventAvailability computes availability of the whole staff pool for one
// event, fresh on every call.
func (s *Service) EventAvailability(eventID int64) (*model.Event, []schedule.StaffProfile, error) {
	event, day, err := s.eventAndDay(eventID)
	if err != nil {
		return nil, nil, err
	}
	pool, err := s.staff.List()
	if err != nil {
		return nil, nil, err
	}
	return event, schedule.Availability(event, pool, day), nil
}

// Assign commits conflict-free candidates into the role and parks conflicted
// ones in a pending decision. baseVersion is the event version the caller
// read; a mismatch rejects the whole request as stale.
func (s *Service) Assign(eventID, baseVersion int64, role string, candidateIDs []int64) (*assignment.AssignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, day, err := s.eventAndDay(eventID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(event, baseVersion); err != nil {
		return nil, err
	}

	candidates, err := s.staff.GetByIDs(candidateIDs)
	if err != nil {
		return nil, err
	}

	result, err := assignment.Assign(day, eventID, role, candidates)
	if err != nil {
		return nil, err
	}

	if err := s.commit(result.Updated, "assign"); err != nil {
		return nil, err
	}
	for _, r := range result.Rejected {
		metrics.RejectionsTotal.WithLabelValues(r.Reason).Inc()
	}
	if result.Decision != nil {
		s.decisions[result.Decision.ID] = result.Decision
		metrics.PendingDecisions.Set(float64(s.pendingCount()))
		s.logger.Info("move decision proposed",
			"decision_id", result.Decision.ID,
			"event_id", eventID,
			"role", role,
			"candidates", len(result.Decision.Pending))
	}
	return result, nil
}

// ConfirmMove applies the operator-approved subset of a pending decision as
// one transaction across the target and every conflicting source event.
func (s *Service) ConfirmMove(decisionID string, chosenIDs []int64) (*assignment.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decision, ok := s.decisions[decisionID]
	if !ok {
		return nil, ErrDecisionNotFound
	}

	_, day, err := s.eventAndDay(decision.EventID)
	if err != nil {
		return nil, err
	}

	result, err := assignment.ConfirmMove(day, decision, chosenIDs)
	if err != nil {
		return nil, err
	}

	if err := s.commit(result.Updated, "move"); err != nil {
		// Storage refused the batch; the decision stays confirmable.
		decision.State = assignment.StateProposed
		return nil, err
	}
	for _, r := range result.Rejected {
		metrics.RejectionsTotal.WithLabelValues(r.Reason).Inc()
	}

	delete(s.decisions, decisionID)
	metrics.PendingDecisions.Set(float64(s.pendingCount()))
	s.logger.Info("move decision resolved",
		"decision_id", decisionID,
		"state", decision.State,
		"moved", len(result.Moved),
		"events_updated", len(result.Updated))
	return result, nil
}

// CancelMove drops a pending decision without touching any event.
func (s *Service) CancelMove(decisionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decision, ok := s.decisions[decisionID]
	if !ok {
		return ErrDecisionNotFound
	}
	if err := decision.Cancel(); err != nil {
		return err
	}
	delete(s.decisions, decisionID)
	metrics.PendingDecisions.Set(float64(s.pendingCount()))
	s.logger.Info("move decision cancelled", "decision_id", decisionID)
	return nil
}

// Decision returns a pending decision by id.
func (s *Service) Decision(decisionID string) (*assignment.MoveDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	decision, ok := s.decisions[decisionID]
	if !ok {
		return nil, ErrDecisionNotFound
	}
	return decision, nil
}

// Unassign removes one staff member from one event.
func (s *Service) Unassign(eventID, baseVersion, staffID int64) (*model.Event, error) {
	return s.singleEventMutation(eventID, baseVersion, "unassign", func(day []*model.Event) (*model.Event, error) {
		return assignment.Unassign(day, eventID, staffID)
	})
}

// ClearRole removes every assignment holding the role.
func (s *Service) ClearRole(eventID, baseVersion int64, role string) (*model.Event, error) {
	return s.singleEventMutation(eventID, baseVersion, "clear_role", func(day []*model.Event) (*model.Event, error) {
		return assignment.ClearRole(day, eventID, role)
	})
}

// ResizeRole updates a role's required headcount.
func (s *Service) ResizeRole(eventID, baseVersion int64, role string, count int) (*model.Event, error) {
	return s.singleEventMutation(eventID, baseVersion, "resize_role", func(day []*model.Event) (*model.Event, error) {
		return assignment.ResizeRole(day, eventID, role, count)
	})
}

// DeleteRole removes a role and all its assignments; confirmed must be true.
func (s *Service) DeleteRole(eventID, baseVersion int64, role string, confirmed bool) (*model.Event, error) {
	return s.singleEventMutation(eventID, baseVersion, "delete_role", func(day []*model.Event) (*model.Event, error) {
		return assignment.DeleteRole(day, eventID, role, confirmed)
	})
}

// AddRole defines a new role on the event.
func (s *Service) AddRole(eventID, baseVersion int64, role string, count int) (*model.Event, error) {
	return s.singleEventMutation(eventID, baseVersion, "add_role", func(day []*model.Event) (*model.Event, error) {
		return assignment.AddRole(day, eventID, role, count)
	})
}

func (s *Service) singleEventMutation(eventID, baseVersion int64, operation string, mutate func([]*model.Event) (*model.Event, error)) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, day, err := s.eventAndDay(eventID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(event, baseVersion); err != nil {
		return nil, err
	}

	updated, err := mutate(day)
	if err != nil {
		return nil, err
	}
	if err := s.commit([]*model.Event{updated}, operation); err != nil {
		return nil, err
	}
	return s.events.GetByID(eventID)
}

func (s *Service) commit(updated []*model.Event, operation string) error {
	if len(updated) == 0 {
		return nil
	}
	if err := s.events.CommitRoster(updated); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			metrics.StaleSnapshotsTotal.Inc()
			return fmt.Errorf("%s: %w", operation, assignment.ErrStaleSnapshot)
		}
		return fmt.Errorf("%s: %w", operation, err)
	}
	metrics.MutationsTotal.WithLabelValues(operation).Inc()
	for _, e := range updated {
		s.notify("event", "updated", e.ID)
	}
	return nil
}

func (s *Service) eventAndDay(eventID int64) (*model.Event, []*model.Event, error) {
	event, err := s.events.GetByID(eventID)
	if err != nil {
		return nil, nil, err
	}
	if event == nil {
		return nil, nil, assignment.ErrEventNotFound
	}
	day, err := s.events.ListByDate(event.Date)
	if err != nil {
		return nil, nil, err
	}
	return event, day, nil
}

func (s *Service) pendingCount() int {
	return len(s.decisions)
}

func checkVersion(event *model.Event, baseVersion int64) error {
	if baseVersion != 0 && baseVersion != event.Version {
		metrics.StaleSnapshotsTotal.Inc()
		return assignment.ErrStaleSnapshot
	}
	return nil
}

