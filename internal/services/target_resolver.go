package services

import "poupa/internal/core"

// ResolveTargets merges user overrides over the default catalog. Unknown
// categories in overrides are ignored. Neither input is modified.
func ResolveTargets(overrides core.TargetOverrides) core.Catalog {
	catalog := core.DefaultCatalog()
	for c, target := range overrides {
		info, ok := catalog[c]
		if !ok {
			continue
		}
		info.Target = target
		catalog[c] = info
	}
	return catalog
}
