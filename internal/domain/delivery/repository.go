package delivery

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// LoadMembersForUpdate resolves ids against meal instances and curry
	// orders and locks the rows. Unknown ids are omitted.
	LoadMembersForUpdate(ctx context.Context, ids []string) ([]Member, error)
	CreateGroup(ctx context.Context, group *Group) error
	AssignMembers(ctx context.Context, members []Member, groupID, slotID string) error
	GetGroupForUpdate(ctx context.Context, groupID string) (*Group, error)
	// ClearGroup detaches every member from the group, keeping their slots.
	ClearGroup(ctx context.Context, groupID string) error
	DeleteGroup(ctx context.Context, groupID string) error
	ListGroups(ctx context.Context, userID string, date time.Time) ([]Group, error)
	ListMembers(ctx context.Context, groupIDs []string) ([]Member, error)
}
