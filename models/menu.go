package models

import "sort"

// BuildMenuTree nests the flat menu rows and keeps the entries the user may
// open. A parent without a URL whose children were all filtered out is dropped.
func BuildMenuTree(items []MenuItem, user *User) []MenuItem {
	children := make(map[string][]MenuItem)
	var roots []MenuItem
	for _, item := range items {
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		key := item.ParentID.String()
		children[key] = append(children[key], item)
	}
	return filterMenu(roots, children, user)
}

func filterMenu(level []MenuItem, children map[string][]MenuItem, user *User) []MenuItem {
	sort.SliceStable(level, func(i, j int) bool { return level[i].SortOrder < level[j].SortOrder })

	out := make([]MenuItem, 0, len(level))
	for _, item := range level {
		if item.Permission != "" && (user == nil || !user.HasPermission(item.Permission)) {
			continue
		}
		kids := children[item.ID.String()]
		if len(kids) > 0 {
			item.Children = filterMenu(kids, children, user)
			if len(item.Children) == 0 && item.URL == "" {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}
