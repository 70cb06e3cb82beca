package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shelfclub/bookclub-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type MemberRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewMemberRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *MemberRepository {
	return &MemberRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

// NextMemberId assigns ids as max+1, matching how member ids were issued
// before the store moved to this service.
func (repository *MemberRepository) NextMemberId(ctx context.Context) (int, error) {
	query := "SELECT COALESCE(MAX(id), 0) + 1 FROM members"

	var next int
	err := repository.DB.QueryRow(ctx, query).Scan(&next)
	if err != nil {
		return 0, err
	}

	return next, nil
}

func (repository *MemberRepository) CheckMember(ctx context.Context, memberId int) (int, error) {
	query := "SELECT 1 FROM members WHERE id = $1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, memberId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}

		return exists, err
	}

	return exists, nil
}

func (repository *MemberRepository) GetMember(ctx context.Context, memberId int) (model.Member, error) {
	query := "SELECT id, name, points, books_read, user_id, role, handle FROM members WHERE id = $1"

	var member model.Member
	err := repository.DB.QueryRow(ctx, query, memberId).Scan(&member.Id, &member.Name, &member.Points, &member.BooksRead, &member.UserId, &member.Role, &member.Handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member, nil
		}

		return member, err
	}

	return member, nil
}

func (repository *MemberRepository) GetMemberByUserId(ctx context.Context, userId string) (model.Member, error) {
	query := "SELECT id, name, points, books_read, user_id, role, handle FROM members WHERE user_id = $1"

	var member model.Member
	err := repository.DB.QueryRow(ctx, query, userId).Scan(&member.Id, &member.Name, &member.Points, &member.BooksRead, &member.UserId, &member.Role, &member.Handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member, nil
		}

		return member, err
	}

	return member, nil
}

func (repository *MemberRepository) CreateMember(ctx context.Context, tx pgx.Tx, member model.Member) error {
	query := "INSERT INTO members (id, name, points, books_read, user_id, role, handle) VALUES ($1, $2, $3, $4, $5, $6, $7)"

	_, err := tx.Exec(ctx, query, member.Id, member.Name, member.Points, member.BooksRead, member.UserId, member.Role, member.Handle)
	if err != nil {
		return err
	}

	return nil
}

// UpdateMember changes exactly the fields present in the request. The caller
// guarantees at least one field is non-nil.
func (repository *MemberRepository) UpdateMember(ctx context.Context, memberId int, name *string, points *int, booksRead *int, userId *string, role *string, handle *string) error {
	sets := []string{}
	args := []interface{}{}

	if name != nil {
		args = append(args, *name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if points != nil {
		args = append(args, *points)
		sets = append(sets, fmt.Sprintf("points = $%d", len(args)))
	}
	if booksRead != nil {
		args = append(args, *booksRead)
		sets = append(sets, fmt.Sprintf("books_read = $%d", len(args)))
	}
	if userId != nil {
		args = append(args, *userId)
		sets = append(sets, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if role != nil {
		args = append(args, *role)
		sets = append(sets, fmt.Sprintf("role = $%d", len(args)))
	}
	if handle != nil {
		args = append(args, *handle)
		sets = append(sets, fmt.Sprintf("handle = $%d", len(args)))
	}

	args = append(args, memberId)
	query := fmt.Sprintf("UPDATE members SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err := repository.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	return nil
}

func (repository *MemberRepository) DeleteMember(ctx context.Context, memberId int) error {
	query := "DELETE FROM members WHERE id = $1"

	_, err := repository.DB.Exec(ctx, query, memberId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *MemberRepository) DeleteShameListByMember(ctx context.Context, memberId int) error {
	query := "DELETE FROM shamelist WHERE member_id = $1"

	_, err := repository.DB.Exec(ctx, query, memberId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *MemberRepository) DeleteMemberClubsByMember(ctx context.Context, memberId int) error {
	query := "DELETE FROM memberclubs WHERE member_id = $1"

	_, err := repository.DB.Exec(ctx, query, memberId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *MemberRepository) ListMemberClubIds(ctx context.Context, memberId int) ([]string, error) {
	query := "SELECT club_id FROM memberclubs WHERE member_id = $1 ORDER BY club_id"

	rows, err := repository.DB.Query(ctx, query, memberId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubIds := []string{}
	for rows.Next() {
		var clubId string
		err = rows.Scan(&clubId)
		if err != nil {
			return nil, err
		}
		clubIds = append(clubIds, clubId)
	}

	return clubIds, rows.Err()
}

func (repository *MemberRepository) ListShameClubIds(ctx context.Context, memberId int) ([]string, error) {
	query := "SELECT club_id FROM shamelist WHERE member_id = $1 ORDER BY club_id"

	rows, err := repository.DB.Query(ctx, query, memberId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubIds := []string{}
	for rows.Next() {
		var clubId string
		err = rows.Scan(&clubId)
		if err != nil {
			return nil, err
		}
		clubIds = append(clubIds, clubId)
	}

	return clubIds, rows.Err()
}

func (repository *MemberRepository) InsertMemberClubTx(ctx context.Context, tx pgx.Tx, memberId int, clubId string) error {
	query := "INSERT INTO memberclubs (member_id, club_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"

	_, err := tx.Exec(ctx, query, memberId, clubId)
	if err != nil {
		return err
	}

	return nil
}

// DeleteMemberClubs removes the given associations in one batched statement.
func (repository *MemberRepository) DeleteMemberClubs(ctx context.Context, memberId int, clubIds []string) error {
	query := "DELETE FROM memberclubs WHERE member_id = $1 AND club_id = ANY($2)"

	_, err := repository.DB.Exec(ctx, query, memberId, clubIds)
	if err != nil {
		return err
	}

	return nil
}

func (repository *MemberRepository) ListClubsByMember(ctx context.Context, memberId int) ([]model.ClubSummary, error) {
	query := `
		SELECT c.id, c.name, c.discord_channel, c.server_id, c.founded_date
		FROM clubs c
		INNER JOIN memberclubs mc ON mc.club_id = c.id
		WHERE mc.member_id = $1
		ORDER BY c.id
	`

	return repository.listClubSummaries(ctx, query, memberId)
}

func (repository *MemberRepository) ListShameClubsByMember(ctx context.Context, memberId int) ([]model.ClubSummary, error) {
	query := `
		SELECT c.id, c.name, c.discord_channel, c.server_id, c.founded_date
		FROM clubs c
		INNER JOIN shamelist sl ON sl.club_id = c.id
		WHERE sl.member_id = $1
		ORDER BY c.id
	`

	return repository.listClubSummaries(ctx, query, memberId)
}

func (repository *MemberRepository) listClubSummaries(ctx context.Context, query string, memberId int) ([]model.ClubSummary, error) {
	rows, err := repository.DB.Query(ctx, query, memberId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := []model.ClubSummary{}
	for rows.Next() {
		var club model.ClubSummary
		err = rows.Scan(&club.Id, &club.Name, &club.DiscordChannel, &club.ServerId, &club.FoundedDate)
		if err != nil {
			return nil, err
		}
		clubs = append(clubs, club)
	}

	return clubs, rows.Err()
}
