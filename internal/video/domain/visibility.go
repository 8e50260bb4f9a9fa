package domain

type Visibility string

const (
	Published   Visibility = "published"
	Unpublished Visibility = "unpublished"
)

func VisibilityOf(isPublished bool) Visibility {
	if isPublished {
		return Published
	}
	return Unpublished
}

// Toggle returns the opposite visibility. Applying it twice yields v.
func (v Visibility) Toggle() Visibility {
	if v == Published {
		return Unpublished
	}
	return Published
}

func (v Visibility) IsPublished() bool {
	return v == Published
}

// StatusMessage is the human readable result of a publish toggle.
func StatusMessage(isPublished bool) string {
	return "Video is now " + string(VisibilityOf(isPublished))
}
