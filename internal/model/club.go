package model

type Club struct {
	Id             string  `json:"id"`
	Name           string  `json:"name"`
	DiscordChannel *string `json:"discord_channel"`
	ServerId       *string `json:"server_id"`
	FoundedDate    *string `json:"founded_date"`
}

// ClubSummary is the flat club shape embedded in member and session detail
// responses.
type ClubSummary struct {
	Id             string  `json:"id"`
	Name           string  `json:"name"`
	DiscordChannel *string `json:"discord_channel"`
	ServerId       *string `json:"server_id"`
	FoundedDate    *string `json:"founded_date"`
}

type ClubCreateRequest struct {
	Id             *string                   `json:"id"`
	Name           string                    `json:"name"`
	DiscordChannel *string                   `json:"discord_channel"`
	ServerId       *string                   `json:"server_id"`
	FoundedDate    *string                   `json:"founded_date"`
	Members        []int                     `json:"members"`
	ActiveSession  *ClubActiveSessionRequest `json:"active_session"`
	ShameList      []int                     `json:"shame_list"`
}

// ClubActiveSessionRequest is the nested session payload accepted on club
// creation. The book is created alongside the session.
type ClubActiveSessionRequest struct {
	Book        BookCreateRequest         `json:"book"`
	DueDate     *string                   `json:"due_date"`
	Discussions []DiscussionCreateRequest `json:"discussions"`
}

type ClubUpdateRequest struct {
	Id             string  `json:"id"`
	Name           *string `json:"name"`
	DiscordChannel *string `json:"discord_channel"`
	FoundedDate    *string `json:"founded_date"`
	ShameList      *[]int  `json:"shame_list"`
}

type ClubUpdateResponse struct {
	ClubUpdated      bool `json:"club_updated"`
	ShameListUpdated bool `json:"shame_list_updated"`
}

type ClubDetailResponse struct {
	Id             string            `json:"id"`
	Name           string            `json:"name"`
	DiscordChannel *string           `json:"discord_channel"`
	ServerId       *string           `json:"server_id"`
	FoundedDate    *string           `json:"founded_date"`
	Members        []MemberWithClubs `json:"members"`
	ActiveSession  *SessionView      `json:"active_session"`
	PastSessions   []SessionView     `json:"past_sessions"`
	ShameList      []int             `json:"shame_list"`
}
