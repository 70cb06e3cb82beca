package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shelfclub/bookclub-backend/internal/constant"
	"github.com/shelfclub/bookclub-backend/internal/model"
	"github.com/shelfclub/bookclub-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type MemberUsecase struct {
	MemberRepository *repository.MemberRepository
	ClubRepository   *repository.ClubRepository
	DB               *pgxpool.Pool
	Log              *zap.Logger
	Config           *koanf.Koanf
}

func NewMemberUsecase(memberRepository *repository.MemberRepository, clubRepository *repository.ClubRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *MemberUsecase {
	return &MemberUsecase{
		MemberRepository: memberRepository,
		ClubRepository:   clubRepository,
		DB:               db,
		Log:              zap,
		Config:           koanf,
	}
}

func (usecase *MemberUsecase) GetMember(ctx *fiber.Ctx) (model.MemberDetailResponse, error) {
	response := model.MemberDetailResponse{}
	ctxContext := ctx.Context()

	rawId := ctx.Query("id")
	userId := ctx.Query("user_id")

	if rawId == "" && userId == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required unless user_id is given",
			Param:   "id",
		}
	}

	var member model.Member
	var err error
	if rawId != "" {
		memberId, convErr := strconv.Atoi(rawId)
		if convErr != nil {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Id must be an integer",
				Param:   "id",
			}
		}
		member, err = usecase.MemberRepository.GetMember(ctxContext, memberId)
	} else {
		member, err = usecase.MemberRepository.GetMemberByUserId(ctxContext, userId)
	}
	if err != nil {
		return response, err
	}

	if member.Id == 0 {
		return response, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Member not found",
			Param:   "id",
		}
	}

	clubs, err := usecase.MemberRepository.ListClubsByMember(ctxContext, member.Id)
	if err != nil {
		return response, err
	}

	shameClubs, err := usecase.MemberRepository.ListShameClubsByMember(ctxContext, member.Id)
	if err != nil {
		return response, err
	}

	response.Id = member.Id
	response.Name = member.Name
	response.Points = member.Points
	response.BooksRead = member.BooksRead
	response.UserId = member.UserId
	response.Role = member.Role
	response.Handle = member.Handle
	response.Clubs = clubs
	response.ShameClubs = shameClubs

	return response, nil
}

// CreateMember inserts the member and its club links in one transaction. The
// club list is validated up front; an unknown club rejects the whole request
// before anything is written.
func (usecase *MemberUsecase) CreateMember(ctx *fiber.Ctx, payload model.MemberCreateRequest) (model.Member, error) {
	member := model.Member{}

	if payload.Name == "" {
		return member, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Name is required to not be empty",
			Param:   "name",
		}
	}

	clubs := []string{}
	if payload.Clubs != nil {
		if len(*payload.Clubs) == 0 {
			return member, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Clubs is required to not be empty when given",
				Param:   "clubs",
			}
		}
		clubs = *payload.Clubs
	}

	ctxContext := ctx.Context()

	if len(clubs) > 0 {
		existing, err := usecase.ClubRepository.FilterExistingClubs(ctxContext, clubs)
		if err != nil {
			return member, err
		}

		missing := missingStrings(existing, clubs)
		if len(missing) > 0 {
			return member, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: fmt.Sprintf("Clubs not found: %s", strings.Join(missing, ", ")),
				Param:   "clubs",
			}
		}
	}

	var memberId int
	if payload.Id != nil {
		memberId = *payload.Id

		exists, err := usecase.MemberRepository.CheckMember(ctxContext, memberId)
		if err != nil {
			return member, err
		}
		if exists == 1 {
			return member, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Member already exists",
				Param:   "id",
			}
		}
	} else {
		nextId, err := usecase.MemberRepository.NextMemberId(ctxContext)
		if err != nil {
			return member, err
		}
		memberId = nextId
	}

	member.Id = memberId
	member.Name = payload.Name
	if payload.Points != nil {
		member.Points = *payload.Points
	}
	if payload.BooksRead != nil {
		member.BooksRead = *payload.BooksRead
	}
	member.UserId = payload.UserId
	member.Role = payload.Role
	member.Handle = payload.Handle

	commited := false

	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return member, err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	err = usecase.MemberRepository.CreateMember(ctxContext, tx, member)
	if err != nil {
		return member, err
	}

	for _, clubId := range clubs {
		err = usecase.MemberRepository.InsertMemberClubTx(ctxContext, tx, memberId, clubId)
		if err != nil {
			return member, err
		}
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return member, err
	}

	commited = true

	for _, clubId := range clubs {
		usecase.ClubRepository.InvalidateClubDetail(ctxContext, clubId)
	}

	return member, nil
}

// UpdateMember applies the present field updates and, when a clubs list is
// given, the diff against the stored associations. The add batch is validated
// before any write: an unknown club id rejects the request with nothing
// changed on the association side.
func (usecase *MemberUsecase) UpdateMember(ctx *fiber.Ctx, payload model.MemberUpdateRequest) (model.MemberUpdateResponse, error) {
	response := model.MemberUpdateResponse{}

	if payload.Id == 0 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	hasFieldUpdate := payload.Name != nil || payload.Points != nil || payload.BooksRead != nil ||
		payload.UserId != nil || payload.Role != nil || payload.Handle != nil
	if !hasFieldUpdate && payload.Clubs == nil {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "No fields to update",
			Param:   "id",
		}
	}

	ctxContext := ctx.Context()

	exists, err := usecase.MemberRepository.CheckMember(ctxContext, payload.Id)
	if err != nil {
		return response, err
	}

	if exists != 1 {
		return response, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Member not found",
			Param:   "id",
		}
	}

	var toAdd, toRemove []string
	if payload.Clubs != nil {
		current, err := usecase.MemberRepository.ListMemberClubIds(ctxContext, payload.Id)
		if err != nil {
			return response, err
		}

		toAdd, toRemove = diffStrings(current, *payload.Clubs)

		if len(toAdd) > 0 {
			existing, err := usecase.ClubRepository.FilterExistingClubs(ctxContext, toAdd)
			if err != nil {
				return response, err
			}

			missing := missingStrings(existing, toAdd)
			if len(missing) > 0 {
				return response, &model.ValidationError{
					Code:    constant.ERR_VALIDATION_CODE,
					Message: fmt.Sprintf("Clubs not found: %s", strings.Join(missing, ", ")),
					Param:   "clubs",
				}
			}
		}
	}

	if hasFieldUpdate {
		err = usecase.MemberRepository.UpdateMember(ctxContext, payload.Id, payload.Name, payload.Points, payload.BooksRead, payload.UserId, payload.Role, payload.Handle)
		if err != nil {
			return response, &model.CascadeError{
				Step:           "member",
				PartialSuccess: false,
				Err:            err,
			}
		}
		response.MemberUpdated = true
	}

	if payload.Clubs != nil {
		if len(toAdd) > 0 {
			commited := false

			tx, err := usecase.DB.Begin(ctxContext)
			if err != nil {
				return response, &model.CascadeError{
					Step:           "member_clubs",
					PartialSuccess: response.MemberUpdated,
					Err:            err,
				}
			}

			defer func() {
				if !commited {
					_ = tx.Rollback(ctxContext)
				}
			}()

			for _, clubId := range toAdd {
				err = usecase.MemberRepository.InsertMemberClubTx(ctxContext, tx, payload.Id, clubId)
				if err != nil {
					return response, &model.CascadeError{
						Step:           "member_clubs",
						PartialSuccess: response.MemberUpdated,
						Err:            err,
					}
				}
			}

			err = tx.Commit(ctxContext)
			if err != nil {
				return response, &model.CascadeError{
					Step:           "member_clubs",
					PartialSuccess: response.MemberUpdated,
					Err:            err,
				}
			}

			commited = true
		}

		if len(toRemove) > 0 {
			err = usecase.MemberRepository.DeleteMemberClubs(ctxContext, payload.Id, toRemove)
			if err != nil {
				return response, &model.CascadeError{
					Step:           "member_clubs",
					PartialSuccess: response.MemberUpdated || len(toAdd) > 0,
					Err:            err,
				}
			}
		}

		response.ClubsUpdated = len(toAdd) > 0 || len(toRemove) > 0

		for _, clubId := range toAdd {
			usecase.ClubRepository.InvalidateClubDetail(ctxContext, clubId)
		}
		for _, clubId := range toRemove {
			usecase.ClubRepository.InvalidateClubDetail(ctxContext, clubId)
		}
	}

	return response, nil
}

// DeleteMember runs the fixed cascade: shame list entries, club associations,
// then the member row. A failing step aborts the cascade; earlier steps stay
// committed.
func (usecase *MemberUsecase) DeleteMember(ctx *fiber.Ctx, memberId int) error {
	if memberId == 0 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Id is required to not be empty",
			Param:   "id",
		}
	}

	ctxContext := ctx.Context()

	exists, err := usecase.MemberRepository.CheckMember(ctxContext, memberId)
	if err != nil {
		return err
	}

	if exists != 1 {
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Member not found",
			Param:   "id",
		}
	}

	clubIds, err := usecase.MemberRepository.ListMemberClubIds(ctxContext, memberId)
	if err != nil {
		usecase.Log.Warn("failed to list member clubs before delete", zap.Int("member_id", memberId), zap.Error(err))
		clubIds = []string{}
	}

	// Shame entries can name clubs the member never joined; those club
	// details are cached too and go stale once the cascade runs.
	shameClubIds, err := usecase.MemberRepository.ListShameClubIds(ctxContext, memberId)
	if err != nil {
		usecase.Log.Warn("failed to list shame clubs before delete", zap.Int("member_id", memberId), zap.Error(err))
		shameClubIds = []string{}
	}

	staleClubs := make(map[string]struct{}, len(clubIds)+len(shameClubIds))
	for _, clubId := range clubIds {
		staleClubs[clubId] = struct{}{}
	}
	for _, clubId := range shameClubIds {
		staleClubs[clubId] = struct{}{}
	}

	err = usecase.MemberRepository.DeleteShameListByMember(ctxContext, memberId)
	if err != nil {
		return &model.CascadeError{
			Step:           "shame_list",
			PartialSuccess: false,
			Err:            err,
		}
	}

	err = usecase.MemberRepository.DeleteMemberClubsByMember(ctxContext, memberId)
	if err != nil {
		return &model.CascadeError{
			Step:           "member_clubs",
			PartialSuccess: true,
			Err:            err,
		}
	}

	err = usecase.MemberRepository.DeleteMember(ctxContext, memberId)
	if err != nil {
		return &model.CascadeError{
			Step:           "member",
			PartialSuccess: true,
			Err:            err,
		}
	}

	for clubId := range staleClubs {
		usecase.ClubRepository.InvalidateClubDetail(ctxContext, clubId)
	}

	return nil
}
