package repo

import (
	"context"

	"gorm.io/gorm"

	"natours/internal/models"
)

// Дефолты рейтинга тура без отзывов.
const (
	defaultRatingsAverage  = 4.5
	defaultRatingsQuantity = 0
)

// ReviewStore — отзывы плюс явный пересчёт рейтинга тура.
// Пересчёт зовут обработчики после каждой мутации отзыва —
// никаких неявных хуков на уровне схемы.
type ReviewStore struct{ db *gorm.DB }

func NewReviewStore(db *gorm.DB) *ReviewStore { return &ReviewStore{db: db} }

func (s *ReviewStore) Create(ctx context.Context, rev *models.Review) error {
	return s.db.WithContext(ctx).Create(rev).Error
}

func (s *ReviewStore) ByID(ctx context.Context, id uint) (*models.Review, error) {
	var rev models.Review
	err := s.db.WithContext(ctx).Preload("User").First(&rev, id).Error
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (s *ReviewStore) Update(ctx context.Context, rev *models.Review, updates map[string]any) error {
	if err := s.db.WithContext(ctx).Model(rev).Updates(updates).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).First(rev, rev.ID).Error
}

func (s *ReviewStore) Delete(ctx context.Context, rev *models.Review) error {
	return s.db.WithContext(ctx).Delete(rev).Error
}

// RecalcTourRatings агрегирует отзывы тура и пишет количество/среднее
// обратно в тур. Без отзывов — возврат к дефолтам.
func (s *ReviewStore) RecalcTourRatings(ctx context.Context, tourID uint) error {
	var agg struct {
		N   int
		Avg float64
	}
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS n", "COALESCE(AVG(rating), 0) AS avg").
		Where("tour_id = ?", tourID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	quantity, average := agg.N, agg.Avg
	if quantity == 0 {
		quantity, average = defaultRatingsQuantity, defaultRatingsAverage
	}
	return s.db.WithContext(ctx).Model(&models.Tour{}).
		Where("id = ?", tourID).
		Updates(map[string]any{
			"ratings_quantity": quantity,
			"ratings_average":  average,
		}).Error
}
