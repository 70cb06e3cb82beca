package model

type Book struct {
	Id        int     `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Edition   *string `json:"edition"`
	Year      *int    `json:"year"`
	Isbn      *string `json:"isbn"`
	PageCount *int    `json:"page_count"`
}

type BookCreateRequest struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Edition   *string `json:"edition"`
	Year      *int    `json:"year"`
	Isbn      *string `json:"isbn"`
	PageCount *int    `json:"page_count"`
}

// BookPatch carries the fields present in a session update request. Absent
// fields keep the stored values.
type BookPatch struct {
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	Edition   *string `json:"edition"`
	Year      *int    `json:"year"`
	Isbn      *string `json:"isbn"`
	PageCount *int    `json:"page_count"`
}
