package model

// Member is a person attending a care group. DOB is an ISO date string
// (e.g. 1995-06-18); group assignment is a pure function of the DOB's
// weekday unless the member was manually transferred.
type Member struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	DOB         string `json:"dob"`
	CareGroupID string `json:"careGroupId"`
}
