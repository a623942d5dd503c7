package request

type FollowUpListRequest struct {
	Status   string `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Type     string `json:"type" validate:"omitempty,oneof=quote booking feedback general"`
	Search   string `json:"search" validate:"omitempty,max=100"`
}
