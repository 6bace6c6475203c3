package vo

// CategoryOf classifies a path by its first segment.
func CategoryOf(p Path) Category {
	switch p.First() {
	case "examples":
		return CategoryExample
	case "api-reference":
		return CategoryAPI
	case "getting-started":
		return CategoryGettingStarted
	case "guides":
		return CategoryGuide
	default:
		return CategoryOther
	}
}
