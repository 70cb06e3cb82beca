package model

type Server struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type ServerCreateRequest struct {
	Id   *string `json:"id"`
	Name string  `json:"name"`
}

type ServerUpdateRequest struct {
	Id   string  `json:"id"`
	Name *string `json:"name"`
}

type ServerDetailResponse struct {
	Id    string              `json:"id"`
	Name  string              `json:"name"`
	Clubs []ServerClubSummary `json:"clubs"`
}

// ServerClubSummary is a club row enriched with its member count and the
// most recently due session, used by the server detail view.
type ServerClubSummary struct {
	Id             string          `json:"id"`
	Name           string          `json:"name"`
	DiscordChannel *string         `json:"discord_channel"`
	FoundedDate    *string         `json:"founded_date"`
	MemberCount    int             `json:"member_count"`
	LatestSession  *SessionSummary `json:"latest_session"`
}

type SessionSummary struct {
	Id      string  `json:"id"`
	DueDate *string `json:"due_date"`
}
