package model

// UncategorizedID is the reserved id of the pseudo-category used for
// transactions without a category. It is never persisted.
const UncategorizedID = 0

// UncategorizedLabel is the display name of the reserved category.
const UncategorizedLabel = "- - -"

// Category is either a top-level category (empty Parent) or a subcategory
// that belongs to the top-level category named by Parent.
type Category struct {
	Name     string
	Parent   string
	ID       int
	ParentID int
}

// Uncategorized returns the reserved pseudo-category.
func Uncategorized() Category {
	return Category{ID: UncategorizedID, Name: UncategorizedLabel}
}

// IsSubcategory reports whether c has a parent.
func (c Category) IsSubcategory() bool {
	return c.Parent != ""
}

// DisplayName renders c for reports, e.g. "Home::Rent".
func (c Category) DisplayName() string {
	if c.ID == UncategorizedID {
		return UncategorizedLabel
	}
	if c.Parent == "" {
		return c.Name
	}
	return c.Parent + "::" + c.Name
}
