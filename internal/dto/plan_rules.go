package dto

// OrientationCountsQuery filters orientation counts by plan year. A missing year means
// the current calendar year.
type OrientationCountsQuery struct {
	Year *int `form:"year" binding:"omitempty,min=1900,max=9999"`
}
