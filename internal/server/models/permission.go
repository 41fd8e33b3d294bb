package models

// Permission is a user's role inside a workspace.
type Permission string

const (
	PermissionOwner  Permission = "OWNER"
	PermissionMember Permission = "MEMBER"
	PermissionViewer Permission = "VIEWER"
)

type capabilities struct {
	edit         bool
	grant        []Permission
	removeOthers bool
	leave        bool
}

var permissionTable = map[Permission]capabilities{
	PermissionOwner: {
		edit:         true,
		grant:        []Permission{PermissionMember, PermissionViewer},
		removeOthers: true,
	},
	PermissionMember: {
		edit:         true,
		grant:        []Permission{PermissionViewer},
		removeOthers: true,
		leave:        true,
	},
	PermissionViewer: {
		leave: true,
	},
}

func (p Permission) Valid() bool {
	_, ok := permissionTable[p]
	return ok
}

// CanEdit covers items, balance and cycle resets.
func (p Permission) CanEdit() bool {
	return permissionTable[p].edit
}

// CanGrant reports whether p may add a member with permission target.
// Nobody can grant OWNER.
func (p Permission) CanGrant(target Permission) bool {
	for _, g := range permissionTable[p].grant {
		if g == target {
			return true
		}
	}
	return false
}

// CanAddMembers reports whether p may add anyone at all.
func (p Permission) CanAddMembers() bool {
	return len(permissionTable[p].grant) > 0
}

func (p Permission) CanRemoveOthers() bool {
	return permissionTable[p].removeOthers
}

// CanLeave reports whether a member with p may remove themselves.
func (p Permission) CanLeave() bool {
	return permissionTable[p].leave
}
