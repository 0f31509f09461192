package repo

import (
	"context"
	"math"
	"sort"

	"gorm.io/gorm"

	"natours/internal/models"
)

// TourStore — аналитика по турам. CRUD по турам идёт через общую фабрику,
// здесь живут только фиксированные отчёты.
type TourStore struct{ db *gorm.DB }

func NewTourStore(db *gorm.DB) *TourStore { return &TourStore{db: db} }

// TourStats — сводка по сложности.
type TourStats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"num_tours"`
	NumRatings int     `json:"num_ratings"`
	AvgRating  float64 `json:"avg_rating"`
	AvgPrice   float64 `json:"avg_price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}

// Stats — группировка по сложности среди туров с рейтингом >= 4.5.
func (s *TourStore) Stats(ctx context.Context) ([]TourStats, error) {
	var stats []TourStats
	err := s.db.WithContext(ctx).Model(&models.Tour{}).
		Select("difficulty",
			"COUNT(*) AS num_tours",
			"SUM(ratings_quantity) AS num_ratings",
			"AVG(ratings_average) AS avg_rating",
			"AVG(price) AS avg_price",
			"MIN(price) AS min_price",
			"MAX(price) AS max_price").
		Where("ratings_average >= ?", 4.5).
		Group("difficulty").
		Order("avg_price").
		Scan(&stats).Error
	return stats, err
}

// MonthPlan — старты туров в одном месяце года.
type MonthPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"num_tour_starts"`
	Tours         []string `json:"tours"`
}

// MonthlyPlan разворачивает даты стартов по месяцам заданного года.
// Даты лежат в JSON-колонке, поэтому разворачиваем в Go: переносимо
// между postgres/mysql/sqlite.
func (s *TourStore) MonthlyPlan(ctx context.Context, year int) ([]MonthPlan, error) {
	var tours []models.Tour
	if err := s.db.WithContext(ctx).
		Select("id", "name", "start_dates").
		Find(&tours).Error; err != nil {
		return nil, err
	}

	byMonth := map[int]*MonthPlan{}
	for _, t := range tours {
		for _, d := range t.StartDates {
			if d.Year() != year {
				continue
			}
			m := int(d.Month())
			p, ok := byMonth[m]
			if !ok {
				p = &MonthPlan{Month: m}
				byMonth[m] = p
			}
			p.NumTourStarts++
			p.Tours = append(p.Tours, t.Name)
		}
	}

	plan := make([]MonthPlan, 0, len(byMonth))
	for _, p := range byMonth {
		plan = append(plan, *p)
	}
	sort.Slice(plan, func(i, j int) bool {
		if plan[i].NumTourStarts != plan[j].NumTourStarts {
			return plan[i].NumTourStarts > plan[j].NumTourStarts
		}
		return plan[i].Month < plan[j].Month
	})
	if len(plan) > 12 {
		plan = plan[:12]
	}
	return plan, nil
}

// TourDistance — тур с расстоянием до заданной точки.
type TourDistance struct {
	models.Tour
	Distance float64 `json:"distance"` // в километрах
}

const earthRadiusKm = 6371.0

// Within возвращает туры, чья точка старта лежит в радиусе radiusKm от
// (lat, lng). Расстояние — гаверсинус; объёмы туров маленькие, считать
// в Go дешевле, чем тянуть геопокрытие в каждую из трёх БД.
func (s *TourStore) Within(ctx context.Context, lat, lng, radiusKm float64) ([]TourDistance, error) {
	var tours []models.Tour
	if err := s.db.WithContext(ctx).
		Where("start_lat IS NOT NULL AND start_lng IS NOT NULL").
		Find(&tours).Error; err != nil {
		return nil, err
	}

	var out []TourDistance
	for _, t := range tours {
		d := haversineKm(lat, lng, *t.StartLat, *t.StartLng)
		if d <= radiusKm {
			out = append(out, TourDistance{Tour: t, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const deg = math.Pi / 180
	dLat := (lat2 - lat1) * deg
	dLng := (lng2 - lng1) * deg
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*deg)*math.Cos(lat2*deg)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
