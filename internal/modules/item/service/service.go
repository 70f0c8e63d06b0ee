package item

import (
	"context"
	"strings"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/internal/modules/item/dto"
	"anoa.com/itemprofile/internal/modules/item/repository"
	search "anoa.com/itemprofile/internal/modules/search/service"
	"anoa.com/itemprofile/pkg/apperror"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultSearchLimit = 20

// ItemService exposes owner-scoped item operations. ownerID always comes from
// the authenticated principal, never from the request body.
type ItemService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req dto.ItemRequest) (*dto.ItemResponse, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]dto.ItemResponse, error)
	Get(ctx context.Context, ownerID uuid.UUID, itemID string) (*dto.ItemResponse, error)
	Update(ctx context.Context, ownerID uuid.UUID, itemID string, req dto.ItemRequest) (*dto.ItemResponse, error)
	Delete(ctx context.Context, ownerID uuid.UUID, itemID string) error
	Search(ctx context.Context, ownerID uuid.UUID, q dto.SearchQuery) ([]dto.ItemResponse, error)
}

type itemService struct {
	repo  repository.ItemRepository
	index search.ItemIndex
	log   logrus.FieldLogger
}

// NewItemService wires the store and an optional search index; a nil index
// makes Search fall back to SQL matching.
func NewItemService(repo repository.ItemRepository, index search.ItemIndex, log logrus.FieldLogger) ItemService {
	return &itemService{
		repo:  repo,
		index: index,
		log:   log.WithField("service", "item"),
	}
}

func (s *itemService) Create(ctx context.Context, ownerID uuid.UUID, req dto.ItemRequest) (*dto.ItemResponse, error) {
	item := &entity.Item{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		UserID:      ownerID,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.reindex(ctx, item)

	res := dto.NewItemResponse(item)
	return &res, nil
}

func (s *itemService) List(ctx context.Context, ownerID uuid.UUID) ([]dto.ItemResponse, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return dto.NewItemResponses(items), nil
}

func (s *itemService) Get(ctx context.Context, ownerID uuid.UUID, itemID string) (*dto.ItemResponse, error) {
	id, err := parseItemID(itemID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	res := dto.NewItemResponse(item)
	return &res, nil
}

func (s *itemService) Update(ctx context.Context, ownerID uuid.UUID, itemID string, req dto.ItemRequest) (*dto.ItemResponse, error) {
	id, err := parseItemID(itemID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Update(ctx, id, ownerID, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, item)

	res := dto.NewItemResponse(item)
	return &res, nil
}

func (s *itemService) Delete(ctx context.Context, ownerID uuid.UUID, itemID string) error {
	id, err := parseItemID(itemID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("item not found")
	}

	if s.index != nil {
		if err := s.index.DeleteItem(ctx, id); err != nil {
			s.log.WithError(err).WithField("item_id", id).Warn("failed to remove item from search index")
		}
	}
	return nil
}

// Search prefers the full-text index and falls back to SQL matching when the
// index is absent or failing. Index hits are re-read from the store so only
// the caller's current rows are returned.
func (s *itemService) Search(ctx context.Context, ownerID uuid.UUID, q dto.SearchQuery) ([]dto.ItemResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query := strings.TrimSpace(q.Q)

	if s.index != nil {
		ids, err := s.index.SearchItemIDs(ctx, ownerID, query, limit)
		if err == nil {
			items, err := s.repo.FindByIDs(ctx, ownerID, ids)
			if err != nil {
				return nil, err
			}
			return dto.NewItemResponses(orderByIDs(items, ids)), nil
		}
		s.log.WithError(err).Warn("search index unavailable, falling back to database")
	}

	items, err := s.repo.SearchByOwner(ctx, ownerID, query, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewItemResponses(items), nil
}

func (s *itemService) reindex(ctx context.Context, item *entity.Item) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexItem(ctx, item); err != nil {
		s.log.WithError(err).WithField("item_id", item.ID).Warn("failed to index item")
	}
}

// parseItemID maps malformed ids to not found so they cannot be told apart
// from missing rows.
func parseItemID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.NotFound("item not found")
	}
	return id, nil
}

func orderByIDs(items []entity.Item, ids []uuid.UUID) []entity.Item {
	byID := make(map[uuid.UUID]entity.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	ordered := make([]entity.Item, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
		}
	}
	return ordered
}
