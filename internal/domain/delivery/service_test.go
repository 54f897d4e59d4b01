package delivery

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"tiffin-app-go/internal/apperr"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
)

type fakeDeliveryRepo struct {
	members map[string]*Member
	groups  map[string]*Group
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{
		members: make(map[string]*Member),
		groups:  make(map[string]*Group),
	}
}

func (r *fakeDeliveryRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeDeliveryRepo) LoadMembersForUpdate(ctx context.Context, ids []string) ([]Member, error) {
	result := make([]Member, 0, len(ids))
	for _, id := range ids {
		if member, ok := r.members[id]; ok {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (r *fakeDeliveryRepo) CreateGroup(ctx context.Context, group *Group) error {
	cloned := *group
	r.groups[group.ID] = &cloned
	return nil
}

func (r *fakeDeliveryRepo) AssignMembers(ctx context.Context, members []Member, groupID, slotID string) error {
	for _, member := range members {
		stored := r.members[member.ID]
		id := groupID
		stored.DeliveryGroupID = &id
		stored.DeliverySlotID = slotID
	}
	return nil
}

func (r *fakeDeliveryRepo) GetGroupForUpdate(ctx context.Context, groupID string) (*Group, error) {
	group, ok := r.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	cloned := *group
	return &cloned, nil
}

func (r *fakeDeliveryRepo) ClearGroup(ctx context.Context, groupID string) error {
	for _, member := range r.members {
		if member.DeliveryGroupID != nil && *member.DeliveryGroupID == groupID {
			member.DeliveryGroupID = nil
		}
	}
	return nil
}

func (r *fakeDeliveryRepo) DeleteGroup(ctx context.Context, groupID string) error {
	delete(r.groups, groupID)
	return nil
}

func (r *fakeDeliveryRepo) ListGroups(ctx context.Context, userID string, date time.Time) ([]Group, error) {
	result := make([]Group, 0)
	for _, group := range r.groups {
		if group.UserID == userID && group.ServiceDate.Equal(date) {
			result = append(result, *group)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeDeliveryRepo) ListMembers(ctx context.Context, groupIDs []string) ([]Member, error) {
	result := make([]Member, 0)
	for _, member := range r.members {
		if member.DeliveryGroupID == nil {
			continue
		}
		for _, id := range groupIDs {
			if *member.DeliveryGroupID == id {
				result = append(result, *member)
			}
		}
	}
	return result, nil
}

func (r *fakeDeliveryRepo) add(member Member) {
	r.members[member.ID] = &member
}

type fakeSlots struct{}

func (fakeSlots) GetSlot(ctx context.Context, slotID string) (*catalog.DeliverySlot, error) {
	switch slotID {
	case "slot-afternoon", "slot-dinner":
		return &catalog.DeliverySlot{ID: slotID, IsActive: true}, nil
	}
	return nil, catalog.ErrSlotNotFound
}

func newDeliveryFixture() (*Service, *fakeDeliveryRepo, time.Time) {
	clk := clock.NewFixed(clock.At(2025, time.January, 15, 9, 0))
	today := clk.Today()
	repo := newFakeDeliveryRepo()
	repo.add(Member{ID: "lunch", Kind: KindMeal, UserID: "user-1", ServiceDate: today, DeliverySlotID: "slot-afternoon", Active: true})
	repo.add(Member{ID: "dinner", Kind: KindMeal, UserID: "user-1", ServiceDate: today, DeliverySlotID: "slot-dinner", Active: true})
	repo.add(Member{ID: "curry", Kind: KindCurry, UserID: "user-1", ServiceDate: today, DeliverySlotID: "slot-afternoon", Active: true})
	repo.add(Member{ID: "paused", Kind: KindMeal, UserID: "user-1", ServiceDate: today, DeliverySlotID: "slot-dinner", IsPaused: true, Active: true})
	repo.add(Member{ID: "tomorrow", Kind: KindMeal, UserID: "user-1", ServiceDate: clock.AddDays(today, 1), DeliverySlotID: "slot-dinner", Active: true})
	repo.add(Member{ID: "foreign", Kind: KindMeal, UserID: "user-2", ServiceDate: today, DeliverySlotID: "slot-dinner", Active: true})
	repo.add(Member{ID: "cancelled", Kind: KindCurry, UserID: "user-1", ServiceDate: today, DeliverySlotID: "slot-afternoon", Active: false})
	return NewService(repo, fakeSlots{}, clk), repo, today
}

func TestGroupRequiresTwoMembers(t *testing.T) {
	service, _, today := newDeliveryFixture()

	_, err := service.Group(context.Background(), "user-1", today, []string{"lunch"}, "slot-afternoon")
	if !errors.Is(err, ErrTooFewMembers) {
		t.Fatalf("expected ErrTooFewMembers, got %v", err)
	}

	_, err = service.Group(context.Background(), "user-1", today, []string{"lunch", "lunch"}, "slot-afternoon")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for duplicate ids, got %v", err)
	}
}

func TestGroupAssignsSlotToMembers(t *testing.T) {
	service, repo, today := newDeliveryFixture()

	view, err := service.Group(context.Background(), "user-1", today, []string{"lunch", "dinner", "curry"}, "slot-dinner")
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(view.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(view.Members))
	}
	for _, id := range []string{"lunch", "dinner", "curry"} {
		member := repo.members[id]
		if member.DeliveryGroupID == nil || *member.DeliveryGroupID != view.ID {
			t.Fatalf("expected %s to be in group %s", id, view.ID)
		}
		if member.DeliverySlotID != "slot-dinner" {
			t.Fatalf("expected %s on slot-dinner, got %s", id, member.DeliverySlotID)
		}
	}
}

func TestGroupRejectsInvalidMembers(t *testing.T) {
	cases := []struct {
		name string
		ids  []string
		want error
	}{
		{name: "foreign", ids: []string{"lunch", "foreign"}, want: ErrMemberForbidden},
		{name: "mixed dates", ids: []string{"lunch", "tomorrow"}, want: ErrMixedDates},
		{name: "paused", ids: []string{"lunch", "paused"}, want: ErrMemberPaused},
		{name: "cancelled order", ids: []string{"lunch", "cancelled"}, want: ErrMemberInactive},
		{name: "missing", ids: []string{"lunch", "ghost"}, want: ErrMemberNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, _, today := newDeliveryFixture()
			_, err := service.Group(context.Background(), "user-1", today, tc.ids, "slot-afternoon")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGroupRejectsAlreadyGroupedMember(t *testing.T) {
	service, _, today := newDeliveryFixture()
	ctx := context.Background()

	if _, err := service.Group(ctx, "user-1", today, []string{"lunch", "curry"}, "slot-afternoon"); err != nil {
		t.Fatalf("group: %v", err)
	}
	_, err := service.Group(ctx, "user-1", today, []string{"lunch", "dinner"}, "slot-afternoon")
	if !errors.Is(err, ErrMemberGrouped) {
		t.Fatalf("expected ErrMemberGrouped, got %v", err)
	}
}

func TestUngroupRetainsSlots(t *testing.T) {
	service, repo, today := newDeliveryFixture()
	ctx := context.Background()

	view, err := service.Group(ctx, "user-1", today, []string{"lunch", "dinner"}, "slot-dinner")
	if err != nil {
		t.Fatalf("group: %v", err)
	}

	if err := service.Ungroup(ctx, "user-2", view.ID); !errors.Is(err, ErrGroupForbidden) {
		t.Fatalf("expected ErrGroupForbidden, got %v", err)
	}
	if err := service.Ungroup(ctx, "user-1", view.ID); err != nil {
		t.Fatalf("ungroup: %v", err)
	}

	for _, id := range []string{"lunch", "dinner"} {
		member := repo.members[id]
		if member.DeliveryGroupID != nil {
			t.Fatalf("expected %s to be detached", id)
		}
		if member.DeliverySlotID != "slot-dinner" {
			t.Fatalf("expected %s to keep slot-dinner, got %s", id, member.DeliverySlotID)
		}
	}
	if _, ok := repo.groups[view.ID]; ok {
		t.Fatalf("expected group to be deleted")
	}
	if err := service.Ungroup(ctx, "user-1", view.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestPairCreatesGroupOnAnchorSlot(t *testing.T) {
	service, repo, _ := newDeliveryFixture()
	repo.members["curry"].DeliverySlotID = "slot-dinner"

	view, err := service.Pair(context.Background(), "user-1", "lunch", "curry")
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	if view.DeliverySlotID != "slot-afternoon" {
		t.Fatalf("expected anchor slot, got %s", view.DeliverySlotID)
	}
	if slot := repo.members["curry"].DeliverySlotID; slot != "slot-afternoon" {
		t.Fatalf("expected curry on slot-afternoon, got %s", slot)
	}
}

func TestPairJoinsExistingGroup(t *testing.T) {
	service, repo, today := newDeliveryFixture()
	ctx := context.Background()

	existing, err := service.Group(ctx, "user-1", today, []string{"lunch", "dinner"}, "slot-dinner")
	if err != nil {
		t.Fatalf("group: %v", err)
	}

	view, err := service.Pair(ctx, "user-1", "lunch", "curry")
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	if view.ID != existing.ID {
		t.Fatalf("expected curry to join %s, got %s", existing.ID, view.ID)
	}
	if len(view.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(view.Members))
	}
	if slot := repo.members["curry"].DeliverySlotID; slot != "slot-dinner" {
		t.Fatalf("expected curry on group slot, got %s", slot)
	}
}

func TestPairWithPausedAnchorFails(t *testing.T) {
	service, _, _ := newDeliveryFixture()

	if _, err := service.Pair(context.Background(), "user-1", "paused", "curry"); !errors.Is(err, ErrMemberPaused) {
		t.Fatalf("expected ErrMemberPaused, got %v", err)
	}
}

func TestListGroups(t *testing.T) {
	service, _, today := newDeliveryFixture()
	ctx := context.Background()

	if _, err := service.Group(ctx, "user-1", today, []string{"lunch", "curry"}, "slot-afternoon"); err != nil {
		t.Fatalf("group: %v", err)
	}

	views, err := service.ListGroups(ctx, "user-1", today)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || len(views[0].Members) != 2 {
		t.Fatalf("expected one group with 2 members, got %+v", views)
	}
	if views[0].DeliverySlotID != "slot-afternoon" {
		t.Fatalf("expected slot-afternoon, got %s", views[0].DeliverySlotID)
	}

	empty, err := service.ListGroups(ctx, "user-1", clock.AddDays(today, 1))
	if err != nil {
		t.Fatalf("list tomorrow: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no groups tomorrow, got %d", len(empty))
	}
}
