package repository

import (
	"context"
	"errors"

	"github.com/shelfclub/bookclub-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewServerRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *ServerRepository {
	return &ServerRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func (repository *ServerRepository) CheckServer(ctx context.Context, serverId string) (int, error) {
	query := "SELECT 1 FROM servers WHERE id = $1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, serverId).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}

		return exists, err
	}

	return exists, nil
}

func (repository *ServerRepository) GetServer(ctx context.Context, serverId string) (model.Server, error) {
	query := "SELECT id, name FROM servers WHERE id = $1"

	var server model.Server
	err := repository.DB.QueryRow(ctx, query, serverId).Scan(&server.Id, &server.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return server, nil
		}

		return server, err
	}

	return server, nil
}

func (repository *ServerRepository) ListServers(ctx context.Context) ([]model.Server, error) {
	query := "SELECT id, name FROM servers ORDER BY id"

	rows, err := repository.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	servers := []model.Server{}
	for rows.Next() {
		var server model.Server
		err = rows.Scan(&server.Id, &server.Name)
		if err != nil {
			return nil, err
		}
		servers = append(servers, server)
	}

	return servers, rows.Err()
}

func (repository *ServerRepository) CreateServer(ctx context.Context, server model.Server) error {
	query := "INSERT INTO servers (id, name) VALUES ($1, $2)"

	_, err := repository.DB.Exec(ctx, query, server.Id, server.Name)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) UpdateServerName(ctx context.Context, serverId string, name string) error {
	query := "UPDATE servers SET name = $1 WHERE id = $2"

	_, err := repository.DB.Exec(ctx, query, name, serverId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) DeleteServer(ctx context.Context, serverId string) error {
	query := "DELETE FROM servers WHERE id = $1"

	_, err := repository.DB.Exec(ctx, query, serverId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ServerRepository) CountClubs(ctx context.Context, serverId string) (int, error) {
	query := "SELECT COUNT(*) FROM clubs WHERE server_id = $1"

	var count int
	err := repository.DB.QueryRow(ctx, query, serverId).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ListClubSummaries resolves the clubs of a server together with the member
// count and the most recently due session of each club in one round trip.
func (repository *ServerRepository) ListClubSummaries(ctx context.Context, serverId string) ([]model.ServerClubSummary, error) {
	query := `
		SELECT c.id, c.name, c.discord_channel, c.founded_date,
		       (SELECT COUNT(*) FROM memberclubs mc WHERE mc.club_id = c.id),
		       s.id, s.due_date
		FROM clubs c
		LEFT JOIN LATERAL (
			SELECT id, due_date FROM sessions
			WHERE club_id = c.id
			ORDER BY due_date DESC NULLS LAST, id DESC
			LIMIT 1
		) s ON true
		WHERE c.server_id = $1
		ORDER BY c.id
	`

	rows, err := repository.DB.Query(ctx, query, serverId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := []model.ServerClubSummary{}
	for rows.Next() {
		var club model.ServerClubSummary
		var sessionId *string
		var dueDate *string
		err = rows.Scan(&club.Id, &club.Name, &club.DiscordChannel, &club.FoundedDate, &club.MemberCount, &sessionId, &dueDate)
		if err != nil {
			return nil, err
		}

		if sessionId != nil {
			club.LatestSession = &model.SessionSummary{
				Id:      *sessionId,
				DueDate: dueDate,
			}
		}

		clubs = append(clubs, club)
	}

	return clubs, rows.Err()
}
