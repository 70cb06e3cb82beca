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

type SessionUsecase struct {
	SessionRepository *repository.SessionRepository
	ClubRepository    *repository.ClubRepository
	DB                *pgxpool.Pool
	Log               *zap.Logger
	Config            *koanf.Koanf
}

func NewSessionUsecase(sessionRepository *repository.SessionRepository, clubRepository *repository.ClubRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *SessionUsecase {
	return &SessionUsecase{
		SessionRepository: sessionRepository,
		ClubRepository:    clubRepository,
		DB:                db,
		Log:               zap,
		Config:            koanf,
	}
}

func (usecase *SessionUsecase) GetSession(ctx *fiber.Ctx, sessionId string) (model.SessionDetailResponse, error) {
	response := model.SessionDetailResponse{}

	if sessionId == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	ctxContext := ctx.Context()

	session, err := usecase.SessionRepository.GetSession(ctxContext, sessionId)
	if err != nil {
		return response, err
	}

	if session.Id == "" {
		return response, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Session not found",
			Param:   "id",
		}
	}

	cached, err := usecase.SessionRepository.GetCachedSessionDetail(ctxContext, session.Id)
	if err == nil && cached != nil {
		return *cached, nil
	}

	club, err := usecase.ClubRepository.GetClub(ctxContext, session.ClubId)
	if err != nil {
		return response, err
	}

	book, err := usecase.SessionRepository.GetBook(ctxContext, session.BookId)
	if err != nil {
		return response, err
	}

	discussions, err := usecase.SessionRepository.ListDiscussionsBySession(ctxContext, session.Id)
	if err != nil {
		return response, err
	}

	shameList, err := usecase.SessionRepository.ListShameMembersByClub(ctxContext, session.ClubId)
	if err != nil {
		return response, err
	}

	response.Id = session.Id
	response.DueDate = session.DueDate
	response.Club = model.ClubSummary{
		Id:             club.Id,
		Name:           club.Name,
		DiscordChannel: club.DiscordChannel,
		ServerId:       club.ServerId,
		FoundedDate:    club.FoundedDate,
	}
	response.Book = book
	response.Discussions = discussions
	response.ShameList = shameList

	err = usecase.SessionRepository.SetCachedSessionDetail(ctxContext, session.Id, &response)
	if err != nil {
		usecase.Log.Warn("failed to cache session detail", zap.String("session_id", session.Id), zap.Error(err))
	}

	return response, nil
}

// CreateSession inserts the book, the session, and its discussions in one
// transaction. The owning club has to exist up front.
func (usecase *SessionUsecase) CreateSession(ctx *fiber.Ctx, payload model.SessionCreateRequest) (model.Session, error) {
	session := model.Session{}

	if payload.ClubId == "" {
		return session, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Club id is required to not be empty",
			Param:   "club_id",
		}
	}

	if payload.Book == nil || payload.Book.Title == "" {
		return session, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Book title is required to not be empty",
			Param:   "book.title",
		}
	}

	if payload.Book.Author == "" {
		return session, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Book author is required to not be empty",
			Param:   "book.author",
		}
	}

	err := validateDiscussions(payload.Discussions)
	if err != nil {
		return session, err
	}

	ctxContext := ctx.Context()

	exists, err := usecase.ClubRepository.CheckClub(ctxContext, payload.ClubId)
	if err != nil {
		return session, err
	}

	if exists != 1 {
		return session, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Club not found",
			Param:   "club_id",
		}
	}

	sessionId := uuid.NewString()
	if payload.Id != nil && *payload.Id != "" {
		sessionId = *payload.Id
	}

	commited := false

	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return session, err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	bookId, err := usecase.SessionRepository.CreateBook(ctxContext, tx, model.Book{
		Title:     payload.Book.Title,
		Author:    payload.Book.Author,
		Edition:   payload.Book.Edition,
		Year:      payload.Book.Year,
		Isbn:      payload.Book.Isbn,
		PageCount: payload.Book.PageCount,
	})
	if err != nil {
		return session, err
	}

	session.Id = sessionId
	session.ClubId = payload.ClubId
	session.BookId = bookId
	session.DueDate = payload.DueDate

	err = usecase.SessionRepository.CreateSession(ctxContext, tx, session)
	if err != nil {
		return session, err
	}

	for _, discussion := range payload.Discussions {
		err = usecase.SessionRepository.CreateDiscussion(ctxContext, tx, model.Discussion{
			Id:        uuid.NewString(),
			SessionId: sessionId,
			Title:     discussion.Title,
			Date:      discussion.Date,
			Location:  discussion.Location,
		})
		if err != nil {
			return session, err
		}
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return session, err
	}

	commited = true

	usecase.ClubRepository.InvalidateClubDetail(ctxContext, payload.ClubId)

	return session, nil
}

// UpdateSession applies the book patch, the session field updates, the
// discussion upserts, and the discussion deletions as independent steps.
// A failing step aborts with the earlier steps still committed.
func (usecase *SessionUsecase) UpdateSession(ctx *fiber.Ctx, payload model.SessionUpdateRequest) (model.SessionUpdateResponse, error) {
	response := model.SessionUpdateResponse{}

	if payload.Id == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	hasFieldUpdate := payload.Book != nil || payload.ClubId != nil || payload.DueDate != nil
	if !hasFieldUpdate && len(payload.Discussions) == 0 && len(payload.DiscussionIdsToDelete) == 0 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "No fields to update",
			Param:   "id",
		}
	}

	ctxContext := ctx.Context()

	session, err := usecase.SessionRepository.GetSession(ctxContext, payload.Id)
	if err != nil {
		return response, err
	}

	if session.Id == "" {
		return response, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Session not found",
			Param:   "id",
		}
	}

	if payload.Book != nil {
		book, err := usecase.SessionRepository.GetBook(ctxContext, session.BookId)
		if err != nil {
			return response, &model.CascadeError{
				Step:           "book",
				PartialSuccess: false,
				Err:            err,
			}
		}

		merged := mergeBook(book, *payload.Book)
		err = usecase.SessionRepository.UpdateBook(ctxContext, merged)
		if err != nil {
			return response, &model.CascadeError{
				Step:           "book",
				PartialSuccess: false,
				Err:            err,
			}
		}
		response.BookUpdated = true
	}

	if payload.ClubId != nil || payload.DueDate != nil {
		if payload.ClubId != nil {
			exists, err := usecase.ClubRepository.CheckClub(ctxContext, *payload.ClubId)
			if err != nil {
				return response, &model.CascadeError{
					Step:           "session",
					PartialSuccess: response.BookUpdated,
					Err:            err,
				}
			}
			if exists != 1 {
				return response, &model.CascadeError{
					Step:           "session",
					PartialSuccess: response.BookUpdated,
					Err: &model.NotFoundError{
						Code:    constant.ERR_NOT_FOUND_ERROR,
						Message: "Club not found",
						Param:   "club_id",
					},
				}
			}
		}

		err = usecase.SessionRepository.UpdateSession(ctxContext, payload.Id, payload.ClubId, payload.DueDate)
		if err != nil {
			return response, &model.CascadeError{
				Step:           "session",
				PartialSuccess: response.BookUpdated,
				Err:            err,
			}
		}
		response.SessionUpdated = true
	}

	if len(payload.Discussions) > 0 || len(payload.DiscussionIdsToDelete) > 0 {
		changed, err := usecase.applyDiscussionChanges(ctx, session, payload.Discussions, payload.DiscussionIdsToDelete)
		if err != nil {
			return response, &model.CascadeError{
				Step:           "discussions",
				PartialSuccess: response.BookUpdated || response.SessionUpdated,
				Err:            err,
			}
		}
		response.DiscussionsUpdated = changed
	}

	usecase.SessionRepository.InvalidateSessionDetail(ctxContext, payload.Id)
	usecase.ClubRepository.InvalidateClubDetail(ctxContext, session.ClubId)
	if payload.ClubId != nil && *payload.ClubId != session.ClubId {
		usecase.ClubRepository.InvalidateClubDetail(ctxContext, *payload.ClubId)
	}

	return response, nil
}

// applyDiscussionChanges upserts the given discussion elements against the
// session and prunes the named ids. An element with an id matching a stored
// discussion patches it; an unknown id inserts under that id; no id inserts
// under a fresh one. New inserts missing a title or date are skipped.
func (usecase *SessionUsecase) applyDiscussionChanges(ctx *fiber.Ctx, session model.Session, upserts []model.DiscussionUpsertRequest, idsToDelete []string) (bool, error) {
	ctxContext := ctx.Context()

	existingIds, err := usecase.SessionRepository.ListDiscussionIdsBySession(ctxContext, session.Id)
	if err != nil {
		return false, err
	}

	existingSet := make(map[string]struct{}, len(existingIds))
	for _, id := range existingIds {
		existingSet[id] = struct{}{}
	}

	changed := false
	for _, upsert := range upserts {
		if upsert.Id != nil {
			if _, ok := existingSet[*upsert.Id]; ok {
				err = usecase.SessionRepository.UpdateDiscussion(ctxContext, session.Id, *upsert.Id, upsert.Title, upsert.Date, upsert.Location)
				if err != nil {
					return changed, err
				}
				changed = true
				continue
			}
		}

		if upsert.Title == nil || *upsert.Title == "" || upsert.Date == nil || *upsert.Date == "" {
			usecase.Log.Warn("skipping discussion insert missing title or date", zap.String("session_id", session.Id))
			continue
		}

		discussionId := uuid.NewString()
		if upsert.Id != nil && *upsert.Id != "" {
			discussionId = *upsert.Id
		}

		err = usecase.SessionRepository.InsertDiscussion(ctxContext, model.Discussion{
			Id:        discussionId,
			SessionId: session.Id,
			Title:     *upsert.Title,
			Date:      *upsert.Date,
			Location:  upsert.Location,
		})
		if err != nil {
			return changed, err
		}
		changed = true
	}

	if len(idsToDelete) > 0 {
		err = usecase.SessionRepository.DeleteDiscussions(ctxContext, session.Id, idsToDelete)
		if err != nil {
			return changed, err
		}
		changed = true
	}

	return changed, nil
}

// DeleteSession runs the fixed cascade: discussions, the session, then the
// book. A failing book cleanup does not fail the request; the caller gets a
// warning message back instead.
func (usecase *SessionUsecase) DeleteSession(ctx *fiber.Ctx, sessionId string) (string, error) {
	if sessionId == "" {
		return "", &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	ctxContext := ctx.Context()

	session, err := usecase.SessionRepository.GetSession(ctxContext, sessionId)
	if err != nil {
		return "", err
	}

	if session.Id == "" {
		return "", &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Session not found",
			Param:   "id",
		}
	}

	err = usecase.SessionRepository.DeleteDiscussionsBySession(ctxContext, sessionId)
	if err != nil {
		return "", &model.CascadeError{
			Step:           "discussions",
			PartialSuccess: false,
			Err:            err,
		}
	}

	err = usecase.SessionRepository.DeleteSession(ctxContext, sessionId)
	if err != nil {
		return "", &model.CascadeError{
			Step:           "session",
			PartialSuccess: true,
			Err:            err,
		}
	}

	message := "Session deleted successfully"
	err = usecase.SessionRepository.DeleteBook(ctxContext, session.BookId)
	if err != nil {
		usecase.Log.Warn("failed to delete book of deleted session", zap.Int("book_id", session.BookId), zap.Error(err))
		message = "Session deleted, but its book could not be deleted"
	}

	usecase.SessionRepository.InvalidateSessionDetail(ctxContext, sessionId)
	usecase.ClubRepository.InvalidateClubDetail(ctxContext, session.ClubId)

	return message, nil
}
