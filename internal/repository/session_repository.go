package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shelfclub/bookclub-backend/internal/model"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionDetailCacheTTL = 5 * time.Minute

type SessionRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewSessionRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *SessionRepository {
	return &SessionRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func (repository *SessionRepository) GetSession(ctx context.Context, sessionId string) (model.Session, error) {
	query := "SELECT id, club_id, book_id, due_date FROM sessions WHERE id = $1"

	var session model.Session
	err := repository.DB.QueryRow(ctx, query, sessionId).Scan(&session.Id, &session.ClubId, &session.BookId, &session.DueDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session, nil
		}

		return session, err
	}

	return session, nil
}

// GetActiveSession returns the session with the latest due_date of the club.
// The secondary id sort makes the tie-break deterministic.
func (repository *SessionRepository) GetActiveSession(ctx context.Context, clubId string) (model.Session, error) {
	query := `
		SELECT id, club_id, book_id, due_date FROM sessions
		WHERE club_id = $1
		ORDER BY due_date DESC NULLS LAST, id DESC
		LIMIT 1
	`

	var session model.Session
	err := repository.DB.QueryRow(ctx, query, clubId).Scan(&session.Id, &session.ClubId, &session.BookId, &session.DueDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session, nil
		}

		return session, err
	}

	return session, nil
}

// ListPastSessions pages the sessions after the active one, capped to limit.
func (repository *SessionRepository) ListPastSessions(ctx context.Context, clubId string, limit int) ([]model.Session, error) {
	query := `
		SELECT id, club_id, book_id, due_date FROM sessions
		WHERE club_id = $1
		ORDER BY due_date DESC NULLS LAST, id DESC
		OFFSET 1 LIMIT $2
	`

	rows, err := repository.DB.Query(ctx, query, clubId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		var session model.Session
		err = rows.Scan(&session.Id, &session.ClubId, &session.BookId, &session.DueDate)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func (repository *SessionRepository) CreateSession(ctx context.Context, tx pgx.Tx, session model.Session) error {
	query := "INSERT INTO sessions (id, club_id, book_id, due_date) VALUES ($1, $2, $3, $4)"

	_, err := tx.Exec(ctx, query, session.Id, session.ClubId, session.BookId, session.DueDate)
	if err != nil {
		return err
	}

	return nil
}

// UpdateSession changes exactly the session fields present in the request.
func (repository *SessionRepository) UpdateSession(ctx context.Context, sessionId string, clubId *string, dueDate *string) error {
	sets := []string{}
	args := []interface{}{}

	if clubId != nil {
		args = append(args, *clubId)
		sets = append(sets, fmt.Sprintf("club_id = $%d", len(args)))
	}
	if dueDate != nil {
		args = append(args, *dueDate)
		sets = append(sets, fmt.Sprintf("due_date = $%d", len(args)))
	}

	args = append(args, sessionId)
	query := fmt.Sprintf("UPDATE sessions SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err := repository.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	return nil
}

func (repository *SessionRepository) DeleteSession(ctx context.Context, sessionId string) error {
	query := "DELETE FROM sessions WHERE id = $1"

	_, err := repository.DB.Exec(ctx, query, sessionId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *SessionRepository) CreateBook(ctx context.Context, tx pgx.Tx, book model.Book) (int, error) {
	query := "INSERT INTO books (title, author, edition, year, isbn, page_count) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id"

	var bookId int
	err := tx.QueryRow(ctx, query, book.Title, book.Author, book.Edition, book.Year, book.Isbn, book.PageCount).Scan(&bookId)
	if err != nil {
		return 0, err
	}

	return bookId, nil
}

func (repository *SessionRepository) GetBook(ctx context.Context, bookId int) (model.Book, error) {
	query := "SELECT id, title, author, edition, year, isbn, page_count FROM books WHERE id = $1"

	var book model.Book
	err := repository.DB.QueryRow(ctx, query, bookId).Scan(&book.Id, &book.Title, &book.Author, &book.Edition, &book.Year, &book.Isbn, &book.PageCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book, nil
		}

		return book, err
	}

	return book, nil
}

// UpdateBook writes the full merged row produced by the field-merge step.
func (repository *SessionRepository) UpdateBook(ctx context.Context, book model.Book) error {
	query := "UPDATE books SET title = $1, author = $2, edition = $3, year = $4, isbn = $5, page_count = $6 WHERE id = $7"

	_, err := repository.DB.Exec(ctx, query, book.Title, book.Author, book.Edition, book.Year, book.Isbn, book.PageCount, book.Id)
	if err != nil {
		return err
	}

	return nil
}

func (repository *SessionRepository) DeleteBook(ctx context.Context, bookId int) error {
	query := "DELETE FROM books WHERE id = $1"

	_, err := repository.DB.Exec(ctx, query, bookId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *SessionRepository) CreateDiscussion(ctx context.Context, tx pgx.Tx, discussion model.Discussion) error {
	query := "INSERT INTO discussions (id, session_id, title, date, location) VALUES ($1, $2, $3, $4, $5)"

	_, err := tx.Exec(ctx, query, discussion.Id, discussion.SessionId, discussion.Title, discussion.Date, discussion.Location)
	if err != nil {
		return err
	}

	return nil
}

func (repository *SessionRepository) InsertDiscussion(ctx context.Context, discussion model.Discussion) error {
	query := "INSERT INTO discussions (id, session_id, title, date, location) VALUES ($1, $2, $3, $4, $5)"

	_, err := repository.DB.Exec(ctx, query, discussion.Id, discussion.SessionId, discussion.Title, discussion.Date, discussion.Location)
	if err != nil {
		return err
	}

	return nil
}

func (repository *SessionRepository) ListDiscussionsBySession(ctx context.Context, sessionId string) ([]model.Discussion, error) {
	query := "SELECT id, session_id, title, date, location FROM discussions WHERE session_id = $1 ORDER BY date ASC, id ASC"

	rows, err := repository.DB.Query(ctx, query, sessionId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discussions := []model.Discussion{}
	for rows.Next() {
		var discussion model.Discussion
		err = rows.Scan(&discussion.Id, &discussion.SessionId, &discussion.Title, &discussion.Date, &discussion.Location)
		if err != nil {
			return nil, err
		}
		discussions = append(discussions, discussion)
	}

	return discussions, rows.Err()
}

func (repository *SessionRepository) ListDiscussionIdsBySession(ctx context.Context, sessionId string) ([]string, error) {
	query := "SELECT id FROM discussions WHERE session_id = $1"

	rows, err := repository.DB.Query(ctx, query, sessionId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discussionIds := []string{}
	for rows.Next() {
		var id string
		err = rows.Scan(&id)
		if err != nil {
			return nil, err
		}
		discussionIds = append(discussionIds, id)
	}

	return discussionIds, rows.Err()
}

// UpdateDiscussion changes exactly the fields present in the request element,
// scoped to the session.
func (repository *SessionRepository) UpdateDiscussion(ctx context.Context, sessionId string, discussionId string, title *string, date *string, location *string) error {
	sets := []string{}
	args := []interface{}{}

	if title != nil {
		args = append(args, *title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if date != nil {
		args = append(args, *date)
		sets = append(sets, fmt.Sprintf("date = $%d", len(args)))
	}
	if location != nil {
		args = append(args, *location)
		sets = append(sets, fmt.Sprintf("location = $%d", len(args)))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, discussionId, sessionId)
	query := fmt.Sprintf("UPDATE discussions SET %s WHERE id = $%d AND session_id = $%d", strings.Join(sets, ", "), len(args)-1, len(args))

	_, err := repository.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	return nil
}

func (repository *SessionRepository) DeleteDiscussionsBySession(ctx context.Context, sessionId string) error {
	query := "DELETE FROM discussions WHERE session_id = $1"

	_, err := repository.DB.Exec(ctx, query, sessionId)
	if err != nil {
		return err
	}

	return nil
}

// DeleteDiscussions removes exactly the named discussions scoped to the
// session in one batched statement.
func (repository *SessionRepository) DeleteDiscussions(ctx context.Context, sessionId string, discussionIds []string) error {
	query := "DELETE FROM discussions WHERE session_id = $1 AND id = ANY($2)"

	_, err := repository.DB.Exec(ctx, query, sessionId, discussionIds)
	if err != nil {
		return err
	}

	return nil
}

// ListShameMembersByClub resolves the shame list of the owning club; the
// shame list is club-scoped, not session-scoped.
func (repository *SessionRepository) ListShameMembersByClub(ctx context.Context, clubId string) ([]model.Member, error) {
	query := `
		SELECT m.id, m.name, m.points, m.books_read, m.user_id, m.role, m.handle
		FROM members m
		INNER JOIN shamelist sl ON sl.member_id = m.id
		WHERE sl.club_id = $1
		ORDER BY m.id
	`

	rows, err := repository.DB.Query(ctx, query, clubId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		var member model.Member
		err = rows.Scan(&member.Id, &member.Name, &member.Points, &member.BooksRead, &member.UserId, &member.Role, &member.Handle)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (repository *SessionRepository) GetCachedSessionDetail(ctx context.Context, sessionId string) (*model.SessionDetailResponse, error) {
	payload, err := repository.DBCache.Get(ctx, "session:detail:"+sessionId).Bytes()
	if err != nil {
		return nil, err
	}

	var detail model.SessionDetailResponse
	err = sonic.Unmarshal(payload, &detail)
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

func (repository *SessionRepository) SetCachedSessionDetail(ctx context.Context, sessionId string, detail *model.SessionDetailResponse) error {
	payload, err := sonic.Marshal(detail)
	if err != nil {
		return err
	}

	return repository.DBCache.Set(ctx, "session:detail:"+sessionId, payload, sessionDetailCacheTTL).Err()
}

func (repository *SessionRepository) InvalidateSessionDetail(ctx context.Context, sessionId string) {
	err := repository.DBCache.Del(ctx, "session:detail:"+sessionId).Err()
	if err != nil {
		repository.Log.Warn("failed to invalidate session detail cache", zap.String("session_id", sessionId), zap.Error(err))
	}
}
