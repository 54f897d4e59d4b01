package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/domain/catalog"
)

const minGroupSize = 2

type Catalog interface {
	GetSlot(ctx context.Context, slotID string) (*catalog.DeliverySlot, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	clock   clock.Clock
}

func NewService(repo Repository, catalog Catalog, clk clock.Clock) *Service {
	return &Service{repo: repo, catalog: catalog, clock: clk}
}

// Group puts the given meal instances and curry orders into one delivery on
// slotID. Every member moves to the slot.
func (s *Service) Group(ctx context.Context, userID string, serviceDate time.Time, ids []string, slotID string) (*GroupView, error) {
	ids = uniqueIDs(ids)
	if len(ids) < minGroupSize {
		return nil, ErrTooFewMembers
	}

	serviceDate = clock.Normalize(serviceDate)
	if serviceDate.Before(s.clock.Today()) {
		return nil, ErrPastDate
	}

	slot, err := s.catalog.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	var result GroupView
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		members, err := tx.LoadMembersForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(members) != len(ids) {
			return ErrMemberNotFound
		}
		if err := checkGroupable(members, userID, serviceDate); err != nil {
			return err
		}

		group := Group{
			ID:          uuid.NewString(),
			UserID:      userID,
			ServiceDate: serviceDate,
		}
		if err := tx.CreateGroup(ctx, &group); err != nil {
			return err
		}
		if err := tx.AssignMembers(ctx, members, group.ID, slot.ID); err != nil {
			return err
		}

		result = newView(group, slot.ID, members)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Pair joins memberID into anchorID's delivery. When the anchor is already
// grouped the member joins that group, otherwise a new group of the two is
// created. Either way the member takes the anchor's slot.
func (s *Service) Pair(ctx context.Context, userID, anchorID, memberID string) (*GroupView, error) {
	var result GroupView
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		members, err := tx.LoadMembersForUpdate(ctx, []string{anchorID, memberID})
		if err != nil {
			return err
		}
		if len(members) != 2 {
			return ErrMemberNotFound
		}

		anchor, member := members[0], members[1]
		if anchor.ID != anchorID {
			anchor, member = member, anchor
		}

		if anchor.UserID != userID || member.UserID != userID {
			return ErrMemberForbidden
		}
		if !anchor.Active || anchor.IsPaused {
			return ErrMemberPaused
		}
		if err := checkGroupable([]Member{member}, userID, anchor.ServiceDate); err != nil {
			return err
		}

		if anchor.DeliveryGroupID != nil {
			group, err := tx.GetGroupForUpdate(ctx, *anchor.DeliveryGroupID)
			if err != nil {
				return err
			}
			if err := tx.AssignMembers(ctx, []Member{member}, group.ID, anchor.DeliverySlotID); err != nil {
				return err
			}
			current, err := tx.ListMembers(ctx, []string{group.ID})
			if err != nil {
				return err
			}
			result = newView(*group, anchor.DeliverySlotID, current)
			return nil
		}

		group := Group{
			ID:          uuid.NewString(),
			UserID:      userID,
			ServiceDate: anchor.ServiceDate,
		}
		if err := tx.CreateGroup(ctx, &group); err != nil {
			return err
		}
		pair := []Member{anchor, member}
		if err := tx.AssignMembers(ctx, pair, group.ID, anchor.DeliverySlotID); err != nil {
			return err
		}
		result = newView(group, anchor.DeliverySlotID, pair)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Ungroup dissolves the group. Members keep the slot they were delivered on.
func (s *Service) Ungroup(ctx context.Context, userID, groupID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		group, err := tx.GetGroupForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		if group.UserID != userID {
			return ErrGroupForbidden
		}
		if err := tx.ClearGroup(ctx, group.ID); err != nil {
			return err
		}
		return tx.DeleteGroup(ctx, group.ID)
	})
}

func (s *Service) ListGroups(ctx context.Context, userID string, date time.Time) ([]GroupView, error) {
	groups, err := s.repo.ListGroups(ctx, userID, clock.Normalize(date))
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []GroupView{}, nil
	}

	groupIDs := make([]string, 0, len(groups))
	for _, group := range groups {
		groupIDs = append(groupIDs, group.ID)
	}
	members, err := s.repo.ListMembers(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[string][]Member, len(groups))
	for _, member := range members {
		if member.DeliveryGroupID == nil {
			continue
		}
		byGroup[*member.DeliveryGroupID] = append(byGroup[*member.DeliveryGroupID], member)
	}

	views := make([]GroupView, 0, len(groups))
	for _, group := range groups {
		groupMembers := byGroup[group.ID]
		slotID := ""
		if len(groupMembers) > 0 {
			slotID = groupMembers[0].DeliverySlotID
		}
		views = append(views, newView(group, slotID, groupMembers))
	}
	return views, nil
}

func checkGroupable(members []Member, userID string, serviceDate time.Time) error {
	for _, member := range members {
		if member.UserID != userID {
			return ErrMemberForbidden
		}
	}
	for _, member := range members {
		if !member.ServiceDate.Equal(serviceDate) {
			return fmt.Errorf("%w: %s", ErrMixedDates, clock.FormatDate(member.ServiceDate))
		}
		if !member.Active {
			return ErrMemberInactive
		}
		if member.IsPaused {
			return ErrMemberPaused
		}
		if member.DeliveryGroupID != nil {
			return ErrMemberGrouped
		}
	}
	return nil
}

func newView(group Group, slotID string, members []Member) GroupView {
	groupID := group.ID
	view := GroupView{Group: group, DeliverySlotID: slotID, Members: make([]Member, 0, len(members))}
	for _, member := range members {
		member.DeliveryGroupID = &groupID
		member.DeliverySlotID = slotID
		view.Members = append(view.Members, member)
	}
	return view
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
