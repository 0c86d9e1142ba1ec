package core

import "time"

// CategoryLevel identifies one tier of the three-level taxonomy.
type CategoryLevel int

const (
	LevelCategory CategoryLevel = iota
	LevelSubCategory
	LevelSubSubCategory
)

func (l CategoryLevel) String() string {
	switch l {
	case LevelCategory:
		return "category"
	case LevelSubCategory:
		return "sub_category"
	case LevelSubSubCategory:
		return "sub_sub_category"
	default:
		return "unknown"
	}
}

// CategoryRow is one row of a reference table. ParentID is the foreign key
// to the level above (category_id or sub_category_id) and is zero for
// top-level categories.
type CategoryRow struct {
	ID          int
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ParentID    int
}

// ReferenceData is the read-only category taxonomy used by the resolver.
// A nil table means the table was not available; the resolver then never
// matches that level. Safe for concurrent use once built.
type ReferenceData struct {
	Categories       []CategoryRow
	SubCategories    []CategoryRow
	SubSubCategories []CategoryRow
}

// Table returns the rows for a level.
func (r *ReferenceData) Table(level CategoryLevel) []CategoryRow {
	if r == nil {
		return nil
	}
	switch level {
	case LevelCategory:
		return r.Categories
	case LevelSubCategory:
		return r.SubCategories
	case LevelSubSubCategory:
		return r.SubSubCategories
	}
	return nil
}

// Counts returns the number of rows per level, for logging.
func (r *ReferenceData) Counts() (categories, subCategories, subSubCategories int) {
	if r == nil {
		return 0, 0, 0
	}
	return len(r.Categories), len(r.SubCategories), len(r.SubSubCategories)
}

// Empty reports whether no reference table has any rows.
func (r *ReferenceData) Empty() bool {
	c, s, ss := r.Counts()
	return c+s+ss == 0
}

// childrenOf returns the rows whose ParentID equals parent, in stored order.
func childrenOf(rows []CategoryRow, parent int) []CategoryRow {
	var out []CategoryRow
	for _, row := range rows {
		if row.ParentID == parent {
			out = append(out, row)
		}
	}
	return out
}
