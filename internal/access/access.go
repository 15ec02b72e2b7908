// Package access holds the stateless authorization predicates applied to
// projects. The requesting user may be nil (anonymous caller).
package access

import "sketchbin/internal/model"

// CanView reports whether user may read the project: public projects are
// visible to everyone, private ones only to their owner.
func CanView(project *model.Project, user *model.User) bool {
	if project.IsPublic {
		return true
	}
	return user != nil && user.Name == project.UserName
}

// CanMutate reports whether user may save or delete the project. Only the
// owner may; admins get read access elsewhere, not write access.
func CanMutate(project *model.Project, user *model.User) bool {
	return user != nil && user.Name == project.UserName
}

// CanListAdmin reports whether user may use the admin project listing.
func CanListAdmin(user *model.User) bool {
	return user != nil && user.IsAdmin()
}

// FilterListing narrows a per-owner project listing for the requesting user:
// the owner sees everything, everyone else only the public subset.
func FilterListing(projects []model.Project, user *model.User, ownerName string) []model.Project {
	if user != nil && user.Name == ownerName {
		return projects
	}
	visible := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if p.IsPublic {
			visible = append(visible, p)
		}
	}
	return visible
}
