package model

type Discussion struct {
	Id        string  `json:"id"`
	SessionId string  `json:"session_id"`
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Location  *string `json:"location"`
}

type DiscussionCreateRequest struct {
	Title    string  `json:"title"`
	Date     string  `json:"date"`
	Location *string `json:"location"`
}

// DiscussionUpsertRequest updates the matching discussion when Id names an
// existing row of the session, otherwise inserts a new row.
type DiscussionUpsertRequest struct {
	Id       *string `json:"id"`
	Title    *string `json:"title"`
	Date     *string `json:"date"`
	Location *string `json:"location"`
}
