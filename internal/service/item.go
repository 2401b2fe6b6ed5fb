package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
	"github.com/sellorama/sellorama/internal/storage"
)

const maxSuggestionLimit = 20

type itemService struct {
	repo  repository.Querier
	store storage.Storage
}

// NewItemService creates a new ItemService instance
func NewItemService(repo repository.Querier, store storage.Storage) domain.ItemService {
	return &itemService{repo: repo, store: store}
}

// Create lists a new item owned by the authenticated user
func (s *itemService) Create(ctx context.Context, params domain.ItemParams) (*domain.Item, error) {
	const op = "ItemService.Create"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(params); err != nil {
		return nil, domain.Invalid(op, validationMessage(err))
	}

	item, err := s.repo.CreateItem(ctx, repository.CreateItemParams{
		UserID:     repository.UUIDFrom(identity.UserID),
		Title:      params.Title,
		Content:    params.Content,
		PriceCents: params.PriceCents,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create item")
	}

	return &item, nil
}

// Get retrieves an item with its average rating
func (s *itemService) Get(ctx context.Context, itemID pgtype.UUID) (*domain.ItemDetail, error) {
	const op = "ItemService.Get"

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, domain.Internal(err, op, "failed to get item")
	}

	rating, err := s.repo.GetItemRating(ctx, itemID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Internal(err, op, "failed to get item rating")
	}

	detail := &domain.ItemDetail{Item: item, Rating: rating}
	if identity := domain.IdentityFromContext(ctx); identity != nil {
		detail.SameUser = repository.ToUUID(item.UserID) == identity.UserID
	}

	return detail, nil
}

// Update edits an item's listing fields. Owner only.
func (s *itemService) Update(ctx context.Context, itemID pgtype.UUID, params domain.ItemParams) error {
	const op = "ItemService.Update"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return err
	}

	if err := validate.Struct(params); err != nil {
		return domain.Invalid(op, validationMessage(err))
	}

	rows, err := s.repo.UpdateItem(ctx, repository.UpdateItemParams{
		ItemID:     itemID,
		OwnerID:    repository.UUIDFrom(identity.UserID),
		Title:      params.Title,
		Content:    params.Content,
		PriceCents: params.PriceCents,
	})
	if err != nil {
		return domain.Internal(err, op, "failed to update item")
	}
	if rows == 0 {
		return s.ownershipError(ctx, op, itemID)
	}

	return nil
}

// Delete removes an item. Owner only.
func (s *itemService) Delete(ctx context.Context, itemID pgtype.UUID) error {
	const op = "ItemService.Delete"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return err
	}

	rows, err := s.repo.DeleteItem(ctx, itemID, repository.UUIDFrom(identity.UserID))
	if err != nil {
		return domain.Internal(err, op, "failed to delete item")
	}
	if rows == 0 {
		return s.ownershipError(ctx, op, itemID)
	}

	return nil
}

// Rate records a rating for an item
func (s *itemService) Rate(ctx context.Context, params domain.RateParams) error {
	const op = "ItemService.Rate"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return err
	}

	if err := validate.Struct(params); err != nil {
		return domain.Invalid(op, validationMessage(err))
	}

	if _, err := s.repo.GetItem(ctx, params.ItemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return domain.Internal(err, op, "failed to get item")
	}

	if err := s.repo.CreateRating(ctx, repository.CreateRatingParams{
		UserID:  repository.UUIDFrom(identity.UserID),
		ItemID:  params.ItemID,
		Rating:  params.Rating,
		Content: params.Content,
	}); err != nil {
		return domain.Internal(err, op, "failed to create rating")
	}

	return nil
}

// SearchSuggestions returns item titles matching a prefix
func (s *itemService) SearchSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	const op = "ItemService.SearchSuggestions"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	suggestions, err := s.repo.SearchSuggestions(ctx, escapeLike(query), int32(limit))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to search suggestions")
	}

	return suggestions, nil
}

// AttachMedia stores an uploaded file and records the reference. Owner only.
func (s *itemService) AttachMedia(ctx context.Context, itemID pgtype.UUID, filename, contentType string, content io.Reader) (*domain.ItemMedia, error) {
	const op = "ItemService.AttachMedia"

	identity, err := domain.RequireIdentity(ctx, op)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, domain.Internal(err, op, "failed to get item")
	}
	if repository.ToUUID(item.UserID) != identity.UserID {
		return nil, domain.ErrNotItemOwner
	}

	key := fmt.Sprintf("items/%s/%s", repository.ToUUID(itemID), filepath.Base(filename))
	url, err := s.store.Put(ctx, key, content, contentType)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to store media")
	}

	media, err := s.repo.CreateItemMedia(ctx, repository.CreateItemMediaParams{
		ItemID:      itemID,
		ObjectKey:   key,
		ContentType: contentType,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to record media")
	}
	media.URL = url

	return &media, nil
}

// MediaURL resolves a stored media reference to a fetchable URL
func (s *itemService) MediaURL(ctx context.Context, mediaID pgtype.UUID) (string, error) {
	const op = "ItemService.MediaURL"

	media, err := s.repo.GetItemMedia(ctx, mediaID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.NotFound(op, "media", repository.ToUUID(mediaID).String())
		}
		return "", domain.Internal(err, op, "failed to get media")
	}

	url, err := s.store.SignedURL(ctx, media.ObjectKey)
	if err != nil {
		return "", domain.Internal(err, op, "failed to sign media URL")
	}

	return url, nil
}

// ownershipError distinguishes a missing item from a non-owner caller
// after a zero-row owner-scoped write.
func (s *itemService) ownershipError(ctx context.Context, op string, itemID pgtype.UUID) error {
	_, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return domain.Internal(err, op, "failed to get item")
	}
	return domain.ErrNotItemOwner
}

// escapeLike neutralizes LIKE wildcards in user-supplied prefixes.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
