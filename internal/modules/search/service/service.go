package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/itemprofile/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

const itemsIndex = "items"

// ItemIndex keeps a full-text index of items. Every query is filtered to one owner.
type ItemIndex interface {
	IndexItem(ctx context.Context, item *entity.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	SearchItemIDs(ctx context.Context, ownerID uuid.UUID, query string, limit int) ([]uuid.UUID, error)
}

type meiliItemIndex struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       logrus.FieldLogger
}

func NewMeiliItemIndex(client meilisearch.ServiceManager, log logrus.FieldLogger) ItemIndex {
	s := &meiliItemIndex{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.WithField("component", "meilisearch"),
	}
	s.initIndex()
	return s
}

func (s *meiliItemIndex) initIndex() {
	filterableAttrs := []string{"user_id"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(itemsIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		s.log.WithError(err).Warn("failed to update items filterable attributes")
	}

	sortableAttrs := []string{"created_at"}
	if _, err := s.client.Index(itemsIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		s.log.WithError(err).Warn("failed to update items sortable attributes")
	}
}

type meiliItemDoc struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *meiliItemIndex) cleanText(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleaned := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleaned), " ")
}

func (s *meiliItemIndex) IndexItem(ctx context.Context, item *entity.Item) error {
	doc := meiliItemDoc{
		ID:          item.ID.String(),
		UserID:      item.UserID.String(),
		Name:        s.cleanText(item.Name),
		Description: s.cleanText(item.Description),
		CreatedAt:   item.CreatedAt.Unix(),
	}

	task, err := s.client.Index(itemsIndex).AddDocumentsWithContext(ctx, []meiliItemDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index item %s: %w", item.ID, err)
	}
	s.log.WithFields(logrus.Fields{"item_id": item.ID, "task": task.TaskUID}).Debug("item indexed")
	return nil
}

func (s *meiliItemIndex) DeleteItem(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(itemsIndex).DeleteDocumentWithContext(ctx, id.String())
	return err
}

type searchHits struct {
	Hits []struct {
		ID string `json:"id"`
	} `json:"hits"`
}

func (s *meiliItemIndex) SearchItemIDs(ctx context.Context, ownerID uuid.UUID, query string, limit int) ([]uuid.UUID, error) {
	raw, err := s.client.Index(itemsIndex).SearchRawWithContext(ctx, query, &meilisearch.SearchRequest{
		Filter:               fmt.Sprintf("user_id = %q", ownerID.String()),
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}

	var res searchHits
	if err := json.Unmarshal(*raw, &res); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
