package model

type Session struct {
	Id      string  `json:"id"`
	ClubId  string  `json:"club_id"`
	BookId  int     `json:"book_id"`
	DueDate *string `json:"due_date"`
}

// SessionView is a session with its book and discussions resolved, embedded
// in club detail responses.
type SessionView struct {
	Id          string       `json:"id"`
	ClubId      string       `json:"club_id"`
	DueDate     *string      `json:"due_date"`
	Book        Book         `json:"book"`
	Discussions []Discussion `json:"discussions"`
}

type SessionCreateRequest struct {
	Id          *string                   `json:"id"`
	ClubId      string                    `json:"club_id"`
	Book        *BookCreateRequest        `json:"book"`
	DueDate     *string                   `json:"due_date"`
	Discussions []DiscussionCreateRequest `json:"discussions"`
}

type SessionUpdateRequest struct {
	Id                    string                    `json:"id"`
	ClubId                *string                   `json:"club_id"`
	DueDate               *string                   `json:"due_date"`
	Book                  *BookPatch                `json:"book"`
	Discussions           []DiscussionUpsertRequest `json:"discussions"`
	DiscussionIdsToDelete []string                  `json:"discussion_ids_to_delete"`
}

type SessionUpdateResponse struct {
	SessionUpdated     bool `json:"session_updated"`
	BookUpdated        bool `json:"book_updated"`
	DiscussionsUpdated bool `json:"discussions_updated"`
}

type SessionDetailResponse struct {
	Id          string       `json:"id"`
	DueDate     *string      `json:"due_date"`
	Club        ClubSummary  `json:"club"`
	Book        Book         `json:"book"`
	Discussions []Discussion `json:"discussions"`
	ShameList   []Member     `json:"shame_list"`
}
