package usecase

import (
	"github.com/shelfclub/bookclub-backend/internal/constant"
	"github.com/shelfclub/bookclub-backend/internal/model"
	"github.com/shelfclub/bookclub-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const pastSessionsPageSize = 10

type ClubUsecase struct {
	ClubRepository    *repository.ClubRepository
	MemberRepository  *repository.MemberRepository
	SessionRepository *repository.SessionRepository
	ServerRepository  *repository.ServerRepository
	DB                *pgxpool.Pool
	Log               *zap.Logger
	Config            *koanf.Koanf
}

func NewClubUsecase(clubRepository *repository.ClubRepository, memberRepository *repository.MemberRepository, sessionRepository *repository.SessionRepository, serverRepository *repository.ServerRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *ClubUsecase {
	return &ClubUsecase{
		ClubRepository:    clubRepository,
		MemberRepository:  memberRepository,
		SessionRepository: sessionRepository,
		ServerRepository:  serverRepository,
		DB:                db,
		Log:               zap,
		Config:            koanf,
	}
}

func (usecase *ClubUsecase) GetClub(ctx *fiber.Ctx) (model.ClubDetailResponse, error) {
	response := model.ClubDetailResponse{}
	ctxContext := ctx.Context()

	clubId := ctx.Query("id")
	discordChannel := ctx.Query("discord_channel")
	serverId := ctx.Query("server_id")

	if clubId == "" && (discordChannel == "" || serverId == "") {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required unless discord_channel and server_id are given",
			Param:   "id",
		}
	}

	var club model.Club
	var err error
	if clubId != "" {
		club, err = usecase.ClubRepository.GetClub(ctxContext, clubId)
	} else {
		club, err = usecase.ClubRepository.GetClubByChannel(ctxContext, discordChannel, serverId)
	}
	if err != nil {
		return response, err
	}

	if club.Id == "" {
		return response, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Club not found",
			Param:   "id",
		}
	}

	cached, err := usecase.ClubRepository.GetCachedClubDetail(ctxContext, club.Id)
	if err == nil && cached != nil {
		return *cached, nil
	}

	members, err := usecase.ClubRepository.ListMembersByClub(ctxContext, club.Id)
	if err != nil {
		return response, err
	}

	memberIds := make([]int, 0, len(members))
	for _, member := range members {
		memberIds = append(memberIds, member.Id)
	}

	clubsByMember := map[int][]string{}
	if len(memberIds) > 0 {
		clubsByMember, err = usecase.ClubRepository.ListClubIdsForMembers(ctxContext, memberIds)
		if err != nil {
			return response, err
		}
	}

	membersWithClubs := make([]model.MemberWithClubs, 0, len(members))
	for _, member := range members {
		clubIds := clubsByMember[member.Id]
		if clubIds == nil {
			clubIds = []string{}
		}
		membersWithClubs = append(membersWithClubs, model.MemberWithClubs{
			Id:        member.Id,
			Name:      member.Name,
			Points:    member.Points,
			BooksRead: member.BooksRead,
			UserId:    member.UserId,
			Role:      member.Role,
			Handle:    member.Handle,
			Clubs:     clubIds,
		})
	}

	var activeSession *model.SessionView
	active, err := usecase.SessionRepository.GetActiveSession(ctxContext, club.Id)
	if err != nil {
		return response, err
	}
	if active.Id != "" {
		view, err := usecase.buildSessionView(ctx, active)
		if err != nil {
			return response, err
		}
		activeSession = &view
	}

	pastSessions := []model.SessionView{}
	past, err := usecase.SessionRepository.ListPastSessions(ctxContext, club.Id, pastSessionsPageSize)
	if err != nil {
		return response, err
	}
	for _, session := range past {
		view, err := usecase.buildSessionView(ctx, session)
		if err != nil {
			return response, err
		}
		pastSessions = append(pastSessions, view)
	}

	shameList, err := usecase.ClubRepository.ListShameList(ctxContext, club.Id)
	if err != nil {
		return response, err
	}

	response.Id = club.Id
	response.Name = club.Name
	response.DiscordChannel = club.DiscordChannel
	response.ServerId = club.ServerId
	response.FoundedDate = club.FoundedDate
	response.Members = membersWithClubs
	response.ActiveSession = activeSession
	response.PastSessions = pastSessions
	response.ShameList = shameList

	err = usecase.ClubRepository.SetCachedClubDetail(ctxContext, club.Id, &response)
	if err != nil {
		usecase.Log.Warn("failed to cache club detail", zap.String("club_id", club.Id), zap.Error(err))
	}

	return response, nil
}

func (usecase *ClubUsecase) buildSessionView(ctx *fiber.Ctx, session model.Session) (model.SessionView, error) {
	view := model.SessionView{}
	ctxContext := ctx.Context()

	book, err := usecase.SessionRepository.GetBook(ctxContext, session.BookId)
	if err != nil {
		return view, err
	}

	discussions, err := usecase.SessionRepository.ListDiscussionsBySession(ctxContext, session.Id)
	if err != nil {
		return view, err
	}

	view.Id = session.Id
	view.ClubId = session.ClubId
	view.DueDate = session.DueDate
	view.Book = book
	view.Discussions = discussions

	return view, nil
}

// CreateClub inserts the club together with any nested member links, shame
// entries, and active session in one transaction.
func (usecase *ClubUsecase) CreateClub(ctx *fiber.Ctx, payload model.ClubCreateRequest) (model.Club, error) {
	club := model.Club{}

	if payload.Name == "" {
		return club, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name is required to not be empty",
			Param:   "name",
		}
	}

	ctxContext := ctx.Context()

	if payload.ServerId != nil && *payload.ServerId != "" {
		exists, err := usecase.ServerRepository.CheckServer(ctxContext, *payload.ServerId)
		if err != nil {
			return club, err
		}

		if exists != 1 {
			return club, &model.NotFoundError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Server not found",
				Param:   "server_id",
			}
		}
	}

	if payload.ActiveSession != nil {
		if payload.ActiveSession.Book.Title == "" {
			return club, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Book title is required to not be empty",
				Param:   "active_session.book.title",
			}
		}
		if payload.ActiveSession.Book.Author == "" {
			return club, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Book author is required to not be empty",
				Param:   "active_session.book.author",
			}
		}

		err := validateDiscussions(payload.ActiveSession.Discussions)
		if err != nil {
			return club, err
		}
	}

	clubId := uuid.NewString()
	if payload.Id != nil && *payload.Id != "" {
		clubId = *payload.Id
	}

	club.Id = clubId
	club.Name = payload.Name
	club.DiscordChannel = payload.DiscordChannel
	club.FoundedDate = payload.FoundedDate
	if payload.ServerId != nil && *payload.ServerId != "" {
		club.ServerId = payload.ServerId
	}

	// Member links and shame entries naming unknown members are skipped,
	// matching the shame-list update semantics.
	memberLinks := []int{}
	for _, memberId := range payload.Members {
		exists, err := usecase.MemberRepository.CheckMember(ctxContext, memberId)
		if err != nil {
			return club, err
		}
		if exists != 1 {
			usecase.Log.Warn("skipping unknown member on club create", zap.Int("member_id", memberId), zap.String("club_id", clubId))
			continue
		}
		memberLinks = append(memberLinks, memberId)
	}

	shameEntries := []int{}
	for _, memberId := range payload.ShameList {
		exists, err := usecase.MemberRepository.CheckMember(ctxContext, memberId)
		if err != nil {
			return club, err
		}
		if exists != 1 {
			usecase.Log.Warn("skipping unknown member on shame list", zap.Int("member_id", memberId), zap.String("club_id", clubId))
			continue
		}
		shameEntries = append(shameEntries, memberId)
	}

	commited := false

	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return club, err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	err = usecase.ClubRepository.CreateClub(ctxContext, tx, club)
	if err != nil {
		return club, err
	}

	for _, memberId := range memberLinks {
		err = usecase.ClubRepository.InsertMemberClubTx(ctxContext, tx, memberId, clubId)
		if err != nil {
			return club, err
		}
	}

	for _, memberId := range shameEntries {
		err = usecase.ClubRepository.InsertShameEntryTx(ctxContext, tx, clubId, memberId)
		if err != nil {
			return club, err
		}
	}

	if payload.ActiveSession != nil {
		bookId, err := usecase.SessionRepository.CreateBook(ctxContext, tx, model.Book{
			Title:     payload.ActiveSession.Book.Title,
			Author:    payload.ActiveSession.Book.Author,
			Edition:   payload.ActiveSession.Book.Edition,
			Year:      payload.ActiveSession.Book.Year,
			Isbn:      payload.ActiveSession.Book.Isbn,
			PageCount: payload.ActiveSession.Book.PageCount,
		})
		if err != nil {
			return club, err
		}

		sessionId := uuid.NewString()
		err = usecase.SessionRepository.CreateSession(ctxContext, tx, model.Session{
			Id:      sessionId,
			ClubId:  clubId,
			BookId:  bookId,
			DueDate: payload.ActiveSession.DueDate,
		})
		if err != nil {
			return club, err
		}

		for _, discussion := range payload.ActiveSession.Discussions {
			err = usecase.SessionRepository.CreateDiscussion(ctxContext, tx, model.Discussion{
				Id:        uuid.NewString(),
				SessionId: sessionId,
				Title:     discussion.Title,
				Date:      discussion.Date,
				Location:  discussion.Location,
			})
			if err != nil {
				return club, err
			}
		}
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return club, err
	}

	commited = true

	return club, nil
}

// UpdateClub applies the present field updates and, when a shame list is
// given, the diff against the stored list. Additions naming unknown members
// are skipped without aborting the batch; removals go in one batched delete.
func (usecase *ClubUsecase) UpdateClub(ctx *fiber.Ctx, payload model.ClubUpdateRequest) (model.ClubUpdateResponse, error) {
	response := model.ClubUpdateResponse{}

	if payload.Id == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	hasFieldUpdate := payload.Name != nil || payload.DiscordChannel != nil || payload.FoundedDate != nil
	if !hasFieldUpdate && payload.ShameList == nil {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "No fields to update",
			Param:   "id",
		}
	}

	ctxContext := ctx.Context()

	exists, err := usecase.ClubRepository.CheckClub(ctxContext, payload.Id)
	if err != nil {
		return response, err
	}

	if exists != 1 {
		return response, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Club not found",
			Param:   "id",
		}
	}

	if hasFieldUpdate {
		err = usecase.ClubRepository.UpdateClub(ctxContext, payload.Id, payload.Name, payload.DiscordChannel, payload.FoundedDate)
		if err != nil {
			return response, &model.CascadeError{
				Step:           "club",
				PartialSuccess: false,
				Err:            err,
			}
		}
		response.ClubUpdated = true
	}

	if payload.ShameList != nil {
		current, err := usecase.ClubRepository.ListShameList(ctxContext, payload.Id)
		if err != nil {
			return response, &model.CascadeError{
				Step:           "shame_list",
				PartialSuccess: response.ClubUpdated,
				Err:            err,
			}
		}

		toAdd, toRemove := diffInts(current, *payload.ShameList)

		added := 0
		for _, memberId := range toAdd {
			memberExists, err := usecase.MemberRepository.CheckMember(ctxContext, memberId)
			if err != nil {
				return response, &model.CascadeError{
					Step:           "shame_list",
					PartialSuccess: response.ClubUpdated || added > 0,
					Err:            err,
				}
			}
			if memberExists != 1 {
				usecase.Log.Warn("skipping unknown member on shame list update", zap.Int("member_id", memberId), zap.String("club_id", payload.Id))
				continue
			}

			err = usecase.ClubRepository.InsertShameEntry(ctxContext, payload.Id, memberId)
			if err != nil {
				return response, &model.CascadeError{
					Step:           "shame_list",
					PartialSuccess: response.ClubUpdated || added > 0,
					Err:            err,
				}
			}
			added++
		}

		removed := 0
		if len(toRemove) > 0 {
			err = usecase.ClubRepository.DeleteShameEntries(ctxContext, payload.Id, toRemove)
			if err != nil {
				return response, &model.CascadeError{
					Step:           "shame_list",
					PartialSuccess: response.ClubUpdated || added > 0,
					Err:            err,
				}
			}
			removed = len(toRemove)
		}

		response.ShameListUpdated = added > 0 || removed > 0
	}

	usecase.ClubRepository.InvalidateClubDetail(ctxContext, payload.Id)

	return response, nil
}

// DeleteClub runs the fixed cascade: discussions of the club's sessions, the
// sessions, the shame list, the member links, then the club row itself. A
// failing step aborts the cascade; earlier steps stay committed.
func (usecase *ClubUsecase) DeleteClub(ctx *fiber.Ctx, clubId string, serverId *string) error {
	if clubId == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	ctxContext := ctx.Context()

	exists, err := usecase.ClubRepository.CheckClub(ctxContext, clubId)
	if err != nil {
		return err
	}

	if exists != 1 {
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Club not found",
			Param:   "id",
		}
	}

	sessionIds, err := usecase.ClubRepository.ListSessionIdsByClub(ctxContext, clubId)
	if err != nil {
		return &model.CascadeError{
			Step:           "sessions",
			PartialSuccess: false,
			Err:            err,
		}
	}

	if len(sessionIds) > 0 {
		err = usecase.ClubRepository.DeleteDiscussionsBySessions(ctxContext, sessionIds)
		if err != nil {
			return &model.CascadeError{
				Step:           "discussions",
				PartialSuccess: false,
				Err:            err,
			}
		}

		err = usecase.ClubRepository.DeleteSessionsByClub(ctxContext, clubId)
		if err != nil {
			return &model.CascadeError{
				Step:           "sessions",
				PartialSuccess: true,
				Err:            err,
			}
		}
	}

	err = usecase.ClubRepository.DeleteShameListByClub(ctxContext, clubId)
	if err != nil {
		return &model.CascadeError{
			Step:           "shame_list",
			PartialSuccess: len(sessionIds) > 0,
			Err:            err,
		}
	}

	err = usecase.ClubRepository.DeleteMemberClubsByClub(ctxContext, clubId)
	if err != nil {
		return &model.CascadeError{
			Step:           "member_clubs",
			PartialSuccess: true,
			Err:            err,
		}
	}

	err = usecase.ClubRepository.DeleteClub(ctxContext, clubId, serverId)
	if err != nil {
		return &model.CascadeError{
			Step:           "club",
			PartialSuccess: true,
			Err:            err,
		}
	}

	usecase.ClubRepository.InvalidateClubDetail(ctxContext, clubId)
	for _, sessionId := range sessionIds {
		usecase.SessionRepository.InvalidateSessionDetail(ctxContext, sessionId)
	}

	return nil
}
