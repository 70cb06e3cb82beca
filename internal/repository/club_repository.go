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

const clubDetailCacheTTL = 5 * time.Minute

type ClubRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewClubRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *ClubRepository {
	return &ClubRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func (repository *ClubRepository) CheckClub(ctx context.Context, clubId string) (int, error) {
	query := "SELECT 1 FROM clubs WHERE id = $1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, clubId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}

		return exists, err
	}

	return exists, nil
}

// FilterExistingClubs returns the subset of clubIds that are present in the
// store, used to reject association updates naming unknown clubs.
func (repository *ClubRepository) FilterExistingClubs(ctx context.Context, clubIds []string) ([]string, error) {
	query := "SELECT id FROM clubs WHERE id = ANY($1)"

	rows, err := repository.DB.Query(ctx, query, clubIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := []string{}
	for rows.Next() {
		var id string
		err = rows.Scan(&id)
		if err != nil {
			return nil, err
		}
		existing = append(existing, id)
	}

	return existing, rows.Err()
}

func (repository *ClubRepository) GetClub(ctx context.Context, clubId string) (model.Club, error) {
	query := "SELECT id, name, discord_channel, server_id, founded_date FROM clubs WHERE id = $1"

	var club model.Club
	err := repository.DB.QueryRow(ctx, query, clubId).Scan(&club.Id, &club.Name, &club.DiscordChannel, &club.ServerId, &club.FoundedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return club, nil
		}

		return club, err
	}

	return club, nil
}

func (repository *ClubRepository) GetClubByChannel(ctx context.Context, discordChannel string, serverId string) (model.Club, error) {
	query := "SELECT id, name, discord_channel, server_id, founded_date FROM clubs WHERE discord_channel = $1 AND server_id = $2"

	var club model.Club
	err := repository.DB.QueryRow(ctx, query, discordChannel, serverId).Scan(&club.Id, &club.Name, &club.DiscordChannel, &club.ServerId, &club.FoundedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return club, nil
		}

		return club, err
	}

	return club, nil
}

func (repository *ClubRepository) CreateClub(ctx context.Context, tx pgx.Tx, club model.Club) error {
	query := "INSERT INTO clubs (id, name, discord_channel, server_id, founded_date) VALUES ($1, $2, $3, $4, $5)"

	_, err := tx.Exec(ctx, query, club.Id, club.Name, club.DiscordChannel, club.ServerId, club.FoundedDate)
	if err != nil {
		return err
	}

	return nil
}

// UpdateClub changes exactly the fields present in the request. The caller
// guarantees at least one field is non-nil.
func (repository *ClubRepository) UpdateClub(ctx context.Context, clubId string, name *string, discordChannel *string, foundedDate *string) error {
	sets := []string{}
	args := []interface{}{}

	if name != nil {
		args = append(args, *name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if discordChannel != nil {
		args = append(args, *discordChannel)
		sets = append(sets, fmt.Sprintf("discord_channel = $%d", len(args)))
	}
	if foundedDate != nil {
		args = append(args, *foundedDate)
		sets = append(sets, fmt.Sprintf("founded_date = $%d", len(args)))
	}

	args = append(args, clubId)
	query := fmt.Sprintf("UPDATE clubs SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err := repository.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	return nil
}

// DeleteClub removes the club row, optionally re-filtered by server_id to
// scope the deletion to the right server.
func (repository *ClubRepository) DeleteClub(ctx context.Context, clubId string, serverId *string) error {
	if serverId != nil {
		query := "DELETE FROM clubs WHERE id = $1 AND server_id = $2"
		_, err := repository.DB.Exec(ctx, query, clubId, *serverId)
		return err
	}

	query := "DELETE FROM clubs WHERE id = $1"
	_, err := repository.DB.Exec(ctx, query, clubId)
	return err
}

func (repository *ClubRepository) ListSessionIdsByClub(ctx context.Context, clubId string) ([]string, error) {
	query := "SELECT id FROM sessions WHERE club_id = $1"

	rows, err := repository.DB.Query(ctx, query, clubId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessionIds := []string{}
	for rows.Next() {
		var id string
		err = rows.Scan(&id)
		if err != nil {
			return nil, err
		}
		sessionIds = append(sessionIds, id)
	}

	return sessionIds, rows.Err()
}

func (repository *ClubRepository) DeleteDiscussionsBySessions(ctx context.Context, sessionIds []string) error {
	query := "DELETE FROM discussions WHERE session_id = ANY($1)"

	_, err := repository.DB.Exec(ctx, query, sessionIds)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ClubRepository) DeleteSessionsByClub(ctx context.Context, clubId string) error {
	query := "DELETE FROM sessions WHERE club_id = $1"

	_, err := repository.DB.Exec(ctx, query, clubId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ClubRepository) DeleteShameListByClub(ctx context.Context, clubId string) error {
	query := "DELETE FROM shamelist WHERE club_id = $1"

	_, err := repository.DB.Exec(ctx, query, clubId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ClubRepository) DeleteMemberClubsByClub(ctx context.Context, clubId string) error {
	query := "DELETE FROM memberclubs WHERE club_id = $1"

	_, err := repository.DB.Exec(ctx, query, clubId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ClubRepository) ListShameList(ctx context.Context, clubId string) ([]int, error) {
	query := "SELECT member_id FROM shamelist WHERE club_id = $1 ORDER BY member_id"

	rows, err := repository.DB.Query(ctx, query, clubId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberIds := []int{}
	for rows.Next() {
		var id int
		err = rows.Scan(&id)
		if err != nil {
			return nil, err
		}
		memberIds = append(memberIds, id)
	}

	return memberIds, rows.Err()
}

func (repository *ClubRepository) InsertShameEntry(ctx context.Context, clubId string, memberId int) error {
	query := "INSERT INTO shamelist (member_id, club_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"

	_, err := repository.DB.Exec(ctx, query, memberId, clubId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ClubRepository) InsertShameEntryTx(ctx context.Context, tx pgx.Tx, clubId string, memberId int) error {
	query := "INSERT INTO shamelist (member_id, club_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"

	_, err := tx.Exec(ctx, query, memberId, clubId)
	if err != nil {
		return err
	}

	return nil
}

// DeleteShameEntries removes the given members from the club's shame list in
// one batched statement.
func (repository *ClubRepository) DeleteShameEntries(ctx context.Context, clubId string, memberIds []int) error {
	query := "DELETE FROM shamelist WHERE club_id = $1 AND member_id = ANY($2)"

	_, err := repository.DB.Exec(ctx, query, clubId, memberIds)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ClubRepository) InsertMemberClubTx(ctx context.Context, tx pgx.Tx, memberId int, clubId string) error {
	query := "INSERT INTO memberclubs (member_id, club_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"

	_, err := tx.Exec(ctx, query, memberId, clubId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ClubRepository) ListMembersByClub(ctx context.Context, clubId string) ([]model.Member, error) {
	query := `
		SELECT m.id, m.name, m.points, m.books_read, m.user_id, m.role, m.handle
		FROM members m
		INNER JOIN memberclubs mc ON mc.member_id = m.id
		WHERE mc.club_id = $1
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

// ListClubIdsForMembers resolves the club-id list of every given member in
// one query, keyed by member id.
func (repository *ClubRepository) ListClubIdsForMembers(ctx context.Context, memberIds []int) (map[int][]string, error) {
	query := "SELECT member_id, club_id FROM memberclubs WHERE member_id = ANY($1) ORDER BY club_id"

	rows, err := repository.DB.Query(ctx, query, memberIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubsByMember := map[int][]string{}
	for rows.Next() {
		var memberId int
		var clubId string
		err = rows.Scan(&memberId, &clubId)
		if err != nil {
			return nil, err
		}
		clubsByMember[memberId] = append(clubsByMember[memberId], clubId)
	}

	return clubsByMember, rows.Err()
}

func (repository *ClubRepository) GetCachedClubDetail(ctx context.Context, clubId string) (*model.ClubDetailResponse, error) {
	payload, err := repository.DBCache.Get(ctx, "club:detail:"+clubId).Bytes()
	if err != nil {
		return nil, err
	}

	var detail model.ClubDetailResponse
	err = sonic.Unmarshal(payload, &detail)
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

func (repository *ClubRepository) SetCachedClubDetail(ctx context.Context, clubId string, detail *model.ClubDetailResponse) error {
	payload, err := sonic.Marshal(detail)
	if err != nil {
		return err
	}

	return repository.DBCache.Set(ctx, "club:detail:"+clubId, payload, clubDetailCacheTTL).Err()
}

func (repository *ClubRepository) InvalidateClubDetail(ctx context.Context, clubId string) {
	err := repository.DBCache.Del(ctx, "club:detail:"+clubId).Err()
	if err != nil {
		repository.Log.Warn("failed to invalidate club detail cache", zap.String("club_id", clubId), zap.Error(err))
	}
}
