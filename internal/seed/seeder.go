package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/zfogg/aihub/backend/internal/aggregation"
	"github.com/zfogg/aihub/backend/internal/logger"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account
const DefaultPassword = "password123"

var (
	categoryNames = []string{"Chat", "Image", "Video", "Audio", "Code", "Writing", "Productivity", "Research"}
	tagNames      = []string{
		"chat", "image-generation", "video", "speech", "coding", "writing",
		"productivity", "research", "open-source", "api", "design", "translation",
	}
	platforms = []string{"twitter", "wechat", "weibo", "linkedin", "facebook", "email"}
)

// Options sizes a seeding run
type Options struct {
	Users int
	Tools int
}

// DefaultOptions is a development sized catalog
func DefaultOptions() Options {
	return Options{Users: 50, Tools: 100}
}

// Report counts what a seeding run created
type Report struct {
	Users      int                  `json:"users"`
	Categories int                  `json:"categories"`
	Tags       int                  `json:"tags"`
	Tools      int                  `json:"tools"`
	Ratings    int                  `json:"ratings"`
	Shares     int                  `json:"shares"`
	Favorites  int                  `json:"favorites"`
	Views      *aggregation.Summary `json:"views"`
}

// Seeder handles database seeding operations
type Seeder struct {
	store  *store.Store
	engine *aggregation.Engine
}

// NewSeeder creates a new seeder instance
func NewSeeder(s *store.Store) *Seeder {
	// Seed returns an error only for invalid sources
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{store: s, engine: aggregation.NewEngine(s)}
}

// Seed fills the catalog with fake users, tools and engagement, then rebuilds
// every materialized view so stats agree with the generated records
func (s *Seeder) Seed(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{}

	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(ctx, opts.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	report.Users = len(users)

	logger.Log.Info("Creating categories and tags...")
	categories, err := s.seedCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}
	report.Categories = len(categories)
	if report.Tags, err = s.seedTags(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed tags: %w", err)
	}

	logger.Log.Info("Creating tools...")
	tools, err := s.seedTools(ctx, categories, opts.Tools)
	if err != nil {
		return nil, fmt.Errorf("failed to seed tools: %w", err)
	}
	report.Tools = len(tools)

	logger.Log.Info("Creating ratings, shares and favorites...")
	if report.Ratings, err = s.seedRatings(ctx, users, tools); err != nil {
		return nil, fmt.Errorf("failed to seed ratings: %w", err)
	}
	if report.Shares, err = s.seedShares(ctx, users, tools); err != nil {
		return nil, fmt.Errorf("failed to seed shares: %w", err)
	}
	if report.Favorites, err = s.seedFavorites(ctx, users, tools); err != nil {
		return nil, fmt.Errorf("failed to seed favorites: %w", err)
	}

	logger.Log.Info("Recomputing statistics...")
	if report.Views, err = s.engine.RecomputeAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to recompute statistics: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", report.Users),
		zap.Int("tools", report.Tools),
		zap.Int("ratings", report.Ratings),
		zap.Int("shares", report.Shares),
		zap.Int("favorites", report.Favorites),
	)
	return report, nil
}

// Clean deletes every record, dependents first
func (s *Seeder) Clean(ctx context.Context) error {
	all := models.All()
	db := s.store.DB().WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Delete(all[i]).Error; err != nil {
			return fmt.Errorf("failed to clean %T: %w", all[i], err)
		}
	}
	return nil
}

// seedUsers creates accounts with unique usernames, all sharing DefaultPassword
func (s *Seeder) seedUsers(ctx context.Context, count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Username:     gofakeit.Username(),
			Email:        gofakeit.Email(),
			PasswordHash: string(hashed),
			IsActive:     true,
		}
		for attempt := 0; ; attempt++ {
			err := s.store.Users.Insert(ctx, &user)
			if err == nil {
				break
			}
			if !errors.Is(err, store.ErrDuplicate) || attempt > 10 {
				return nil, err
			}
			user.ID = ""
			user.Username = fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(1, 9999))
		}
		users = append(users, user)
	}
	return users, nil
}

// seedCategories creates the fixed category list, reusing existing ones
func (s *Seeder) seedCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(categoryNames))
	for i, name := range categoryNames {
		existing, err := s.store.Categories.FindOne(ctx, store.Eq("name", name))
		if err == nil {
			categories = append(categories, *existing)
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		cat := models.Category{
			Name:        name,
			Description: gofakeit.HipsterSentence(),
			Order:       i,
			IsActive:    true,
		}
		if err := s.store.Categories.Insert(ctx, &cat); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

// seedTags registers the fixed tag list and returns how many were new
func (s *Seeder) seedTags(ctx context.Context) (int, error) {
	created := 0
	for _, name := range tagNames {
		err := s.store.Tags.Insert(ctx, &models.Tag{
			Name:        name,
			Description: gofakeit.HipsterSentence(),
			Color:       gofakeit.HexColor(),
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, store.ErrDuplicate):
		default:
			return created, err
		}
	}
	return created, nil
}

// seedTools creates tools in random categories, then links each to a few
// others through related_tools
func (s *Seeder) seedTools(ctx context.Context, categories []models.Category, count int) ([]models.Tool, error) {
	tools := make([]models.Tool, 0, count)
	for i := 0; i < count; i++ {
		tool := models.Tool{
			Name:         gofakeit.AppName(),
			Description:  gofakeit.HipsterSentence(),
			URL:          gofakeit.URL(),
			Tags:         pick(tagNames, gofakeit.Number(1, 3)),
			IsFree:       gofakeit.Bool(),
			IsFeatured:   gofakeit.Number(1, 10) == 1,
			IsActive:     gofakeit.Number(1, 20) != 1,
			RelatedTools: models.StringArray{},
		}
		if len(categories) > 0 {
			tool.CategoryID = categories[gofakeit.Number(0, len(categories)-1)].ID
		}
		created := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()).UTC()
		tool.CreatedAt = created
		tool.UpdatedAt = created

		if err := s.store.Tools.Insert(ctx, &tool); err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}

	ids := make([]string, len(tools))
	for i := range tools {
		ids[i] = tools[i].ID
	}
	for i := range tools {
		related := make(models.StringArray, 0, 3)
		for _, id := range pick(ids, gofakeit.Number(0, 3)) {
			if id != tools[i].ID {
				related = append(related, id)
			}
		}
		if len(related) == 0 {
			continue
		}
		if err := s.store.Tools.SetColumns(ctx, tools[i].ID, map[string]interface{}{"related_tools": related}); err != nil {
			return nil, err
		}
		tools[i].RelatedTools = related
	}
	return tools, nil
}

// seedRatings lets every user rate a handful of distinct tools
func (s *Seeder) seedRatings(ctx context.Context, users []models.User, tools []models.Tool) (int, error) {
	created := 0
	for _, user := range users {
		for _, tool := range pickTools(tools, gofakeit.Number(0, 5)) {
			rating := models.Rating{
				ToolID:  tool.ID,
				UserID:  user.ID,
				Score:   float64(gofakeit.Number(0, 10)) / 2,
				Comment: gofakeit.HipsterSentence(),
				Tags:    pick(tool.Tags, gofakeit.Number(0, len(tool.Tags))),
			}
			if err := s.store.Ratings.Insert(ctx, &rating); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					continue
				}
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// seedShares records a few shares per user on random platforms
func (s *Seeder) seedShares(ctx context.Context, users []models.User, tools []models.Tool) (int, error) {
	created := 0
	for _, user := range users {
		for _, tool := range pickTools(tools, gofakeit.Number(0, 3)) {
			share := models.Share{
				ToolID:   tool.ID,
				UserID:   user.ID,
				Platform: platforms[gofakeit.Number(0, len(platforms)-1)],
				ShareURL: tool.URL,
			}
			if err := s.store.Shares.Insert(ctx, &share); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// seedFavorites favorites a few distinct tools per user
func (s *Seeder) seedFavorites(ctx context.Context, users []models.User, tools []models.Tool) (int, error) {
	created := 0
	for _, user := range users {
		for _, tool := range pickTools(tools, gofakeit.Number(0, 4)) {
			err := s.store.Favorites.Insert(ctx, &models.Favorite{ToolID: tool.ID, UserID: user.ID})
			if err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					continue
				}
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// pick returns up to n distinct elements of from in random order
func pick(from []string, n int) models.StringArray {
	if n > len(from) {
		n = len(from)
	}
	shuffled := append([]string(nil), from...)
	gofakeit.ShuffleStrings(shuffled)
	return models.StringArray(shuffled[:n])
}

// pickTools returns up to n distinct tools
func pickTools(tools []models.Tool, n int) []models.Tool {
	if n > len(tools) {
		n = len(tools)
	}
	idx := make([]int, len(tools))
	for i := range idx {
		idx[i] = i
	}
	gofakeit.ShuffleInts(idx)
	out := make([]models.Tool, 0, n)
	for _, i := range idx[:n] {
		out = append(out, tools[i])
	}
	return out
}
