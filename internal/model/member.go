package model

type Member struct {
	Id        int     `json:"id"`
	Name      string  `json:"name"`
	Points    int     `json:"points"`
	BooksRead int     `json:"books_read"`
	UserId    *string `json:"user_id"`
	Role      *string `json:"role"`
	Handle    *string `json:"handle"`
}

// MemberWithClubs is a member enriched with the ids of the clubs it belongs
// to, used by the club detail view.
type MemberWithClubs struct {
	Id        int      `json:"id"`
	Name      string   `json:"name"`
	Points    int      `json:"points"`
	BooksRead int      `json:"books_read"`
	UserId    *string  `json:"user_id"`
	Role      *string  `json:"role"`
	Handle    *string  `json:"handle"`
	Clubs     []string `json:"clubs"`
}

type MemberCreateRequest struct {
	Id        *int      `json:"id"`
	Name      string    `json:"name"`
	Points    *int      `json:"points"`
	BooksRead *int      `json:"books_read"`
	UserId    *string   `json:"user_id"`
	Role      *string   `json:"role"`
	Handle    *string   `json:"handle"`
	Clubs     *[]string `json:"clubs"`
}

type MemberUpdateRequest struct {
	Id        int       `json:"id"`
	Name      *string   `json:"name"`
	Points    *int      `json:"points"`
	BooksRead *int      `json:"books_read"`
	UserId    *string   `json:"user_id"`
	Role      *string   `json:"role"`
	Handle    *string   `json:"handle"`
	Clubs     *[]string `json:"clubs"`
}

type MemberUpdateResponse struct {
	MemberUpdated bool `json:"member_updated"`
	ClubsUpdated  bool `json:"clubs_updated"`
}

type MemberDetailResponse struct {
	Id         int           `json:"id"`
	Name       string        `json:"name"`
	Points     int           `json:"points"`
	BooksRead  int           `json:"books_read"`
	UserId     *string       `json:"user_id"`
	Role       *string       `json:"role"`
	Handle     *string       `json:"handle"`
	Clubs      []ClubSummary `json:"clubs"`
	ShameClubs []ClubSummary `json:"shame_clubs"`
}
