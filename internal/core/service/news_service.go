package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// defaultNewsImage is shown when a submission carries no image.
const defaultNewsImage = "https://images.unsplash.com/photo-1532012197267-da84d127e765?auto=format&fit=crop&w=1400&q=60"

type newsService struct {
	news ports.NewsRepository
	tx   ports.TxRunner
	log  zerolog.Logger
}

// NewNewsService returns a NewsService implementation.
func NewNewsService(news ports.NewsRepository, tx ports.TxRunner, log zerolog.Logger) ports.NewsService {
	return &newsService{news: news, tx: tx, log: log}
}

// Create records a member's submission in pending state.
func (s *newsService) Create(ctx context.Context, in ports.CreateNewsInput) (*domain.NewsItem, error) {
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if !domain.ValidCategory(category) {
		category = domain.CategoryAnnouncements
	}
	imageURL := in.ImageRef
	if imageURL == "" {
		imageURL = defaultNewsImage
	}

	item := &domain.NewsItem{
		Title:     strings.TrimSpace(in.Title),
		Excerpt:   strings.TrimSpace(in.Excerpt),
		Content:   strings.TrimSpace(in.Content),
		ImageURL:  imageURL,
		Status:    domain.NewsPending,
		Category:  category,
		AuthorID:  in.AuthorID,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.news.Create(ctx, item)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create news item")
		return nil, err
	}

	s.log.Info().Str("news_id", created.ID).Str("category", category).Msg("news item submitted")
	return created, nil
}

func (s *newsService) ListPublished(ctx context.Context, category string) ([]*domain.NewsItem, error) {
	filter := ports.ListNewsFilter{Status: domain.NewsPublished}
	category = strings.ToLower(strings.TrimSpace(category))
	if domain.ValidCategory(category) {
		filter.Category = category
	}
	return s.news.List(ctx, filter)
}

// Get returns a published item to anyone; admins may view any status.
func (s *newsService) Get(ctx context.Context, id string, caller *ports.Caller) (*domain.NewsItem, error) {
	item, err := s.news.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != nil && caller.Role == domain.RoleAdmin {
		return item, nil
	}
	if item.Status != domain.NewsPublished {
		return nil, domain.ErrNewsNotFound
	}
	return item, nil
}

func (s *newsService) ListAll(ctx context.Context) ([]*domain.NewsItem, error) {
	return s.news.ListAll(ctx)
}

func (s *newsService) Approve(ctx context.Context, id string) (*domain.NewsItem, error) {
	item, err := s.news.SetStatus(ctx, id, domain.NewsPublished)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("news_id", id).Msg("news item published")
	return item, nil
}

func (s *newsService) Reject(ctx context.Context, id string) (*domain.NewsItem, error) {
	item, err := s.news.SetStatus(ctx, id, domain.NewsRejected)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("news_id", id).Msg("news item rejected")
	return item, nil
}

func (s *newsService) Edit(ctx context.Context, id string, u ports.NewsUpdate) (*domain.NewsItem, error) {
	if u.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*u.Category))
		if !domain.ValidCategory(category) {
			u.Category = nil
		} else {
			u.Category = &category
		}
	}
	return s.news.Update(ctx, id, u)
}

// Reorder applies a batch of single-item moves atomically. Each move sets
// the item's order index; when exactly one other item already holds that
// index, that neighbor is displaced by one slot away from the moved
// item's prior position. Unknown ids are skipped. This is deliberately a
// single-slot displacement, not a full renumbering: under multi-item
// batches the result is best-effort, which matches the drag-and-drop
// behavior this backs.
func (s *newsService) Reorder(ctx context.Context, moves []ports.ReorderMove) error {
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, move := range moves {
			item, err := s.news.FindByID(txCtx, move.ID)
			if err != nil {
				if err == domain.ErrNewsNotFound {
					continue
				}
				return err
			}

			oldIndex := item.OrderIndex
			if err := s.news.SetOrderIndex(txCtx, item.ID, move.NewIndex); err != nil {
				return err
			}

			conflicting, err := s.news.FindByOrderIndex(txCtx, move.NewIndex, item.ID)
			if err != nil {
				if err == domain.ErrNewsNotFound {
					continue
				}
				return err
			}

			// Displace the neighbor toward the slot the moved item left:
			// moving down pushes the neighbor up, moving up pushes it down.
			displaced := move.NewIndex + 1
			if move.NewIndex > oldIndex {
				displaced = move.NewIndex - 1
			}
			if err := s.news.SetOrderIndex(txCtx, conflicting.ID, displaced); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int("moves", len(moves)).Msg("news reorder failed, batch rolled back")
		return err
	}

	s.log.Info().Int("moves", len(moves)).Msg("news order updated")
	return nil
}
