// Package memeserver is a local implementation of the meme-sharing API used
// for development and end-to-end tests of the client.
package memeserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"memefeed/internal/models"
	"memefeed/internal/observability"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// userRecord is the persisted form of a user account.
type userRecord struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	PictureURL   string
	CreatedAt    time.Time
}

// memeRecord is the persisted form of a meme with its caption overlays.
type memeRecord struct {
	ID          string `gorm:"primaryKey"`
	AuthorID    string `gorm:"index;not null"`
	PictureURL  string
	Description string
	Texts       []memeTextRecord `gorm:"foreignKey:MemeID"`
	CreatedAt   time.Time        `gorm:"index"`
}

// memeTextRecord is one caption overlay; Position preserves overlay order.
type memeTextRecord struct {
	ID       uint   `gorm:"primaryKey"`
	MemeID   string `gorm:"index;not null"`
	Content  string
	X        int
	Y        int
	Position int
}

// commentRecord is the persisted form of a comment.
type commentRecord struct {
	ID        string `gorm:"primaryKey"`
	MemeID    string `gorm:"index;not null"`
	AuthorID  string `gorm:"not null"`
	Content   string `gorm:"not null"`
	CreatedAt time.Time
}

// Store wraps the SQLite database behind the dev server.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (or creates) the SQLite database at path and migrates the
// schema. Use ":memory:" for tests.
func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %q: %w", path, err)
	}
	if err := db.AutoMigrate(&userRecord{}, &memeRecord{}, &memeTextRecord{}, &commentRecord{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Empty reports whether no users exist yet; fresh databases get seeded.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRecord{}).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *Store) createUser(ctx context.Context, u *userRecord) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) userByID(ctx context.Context, id string) (*userRecord, error) {
	var u userRecord
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user " + id + " not found")
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) userByUsername(ctx context.Context, username string) (*userRecord, error) {
	var u userRecord
	if err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user " + username + " not found")
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) createMeme(ctx context.Context, m *memeRecord) error {
	return s.db.WithContext(ctx).Create(m).Error
}

// listMemes returns one page of memes, newest first, with overlays attached.
func (s *Store) listMemes(ctx context.Context, offset, limit int) ([]memeRecord, error) {
	var memes []memeRecord
	err := s.db.WithContext(ctx).
		Preload("Texts", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&memes).Error
	return memes, err
}

func (s *Store) countMemes(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&memeRecord{}).Count(&n).Error
	return n, err
}

func (s *Store) memeByID(ctx context.Context, id string) (*memeRecord, error) {
	var m memeRecord
	err := s.db.WithContext(ctx).
		Preload("Texts", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("meme " + id + " not found")
		}
		return nil, err
	}
	return &m, nil
}

func (s *Store) createComment(ctx context.Context, c *commentRecord) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// listComments returns one page of a meme's comments, oldest first.
func (s *Store) listComments(ctx context.Context, memeID string, offset, limit int) ([]commentRecord, error) {
	var comments []commentRecord
	err := s.db.WithContext(ctx).
		Where("meme_id = ?", memeID).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (s *Store) countComments(ctx context.Context, memeID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&commentRecord{}).
		Where("meme_id = ?", memeID).Count(&n).Error
	return n, err
}

// commentCounts returns the comment count per meme id for the given memes.
func (s *Store) commentCounts(ctx context.Context, memeIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(memeIDs))
	if len(memeIDs) == 0 {
		return counts, nil
	}
	rows := []struct {
		MemeID string
		N      int
	}{}
	err := s.db.WithContext(ctx).Model(&commentRecord{}).
		Select("meme_id, COUNT(*) AS n").
		Where("meme_id IN ?", memeIDs).
		Group("meme_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.MemeID] = r.N
	}
	return counts, nil
}

// toUser converts a record into the public profile shape.
func toUser(u *userRecord) models.User {
	return models.User{ID: u.ID, Username: u.Username, PictureURL: u.PictureURL}
}

// toMeme converts a record into the wire shape.
func toMeme(m *memeRecord, commentsCount int) models.Meme {
	texts := make([]models.MemeText, len(m.Texts))
	for i, t := range m.Texts {
		texts[i] = models.MemeText{Content: t.Content, X: t.X, Y: t.Y}
	}
	return models.Meme{
		ID:            m.ID,
		AuthorID:      m.AuthorID,
		PictureURL:    m.PictureURL,
		Description:   m.Description,
		CommentsCount: commentsCount,
		Texts:         texts,
		CreatedAt:     m.CreatedAt,
	}
}

// toComment converts a record into the wire shape.
func toComment(c *commentRecord) models.Comment {
	return models.Comment{
		ID:        c.ID,
		AuthorID:  c.AuthorID,
		MemeID:    c.MemeID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// gormSlogLogger integrates GORM with slog.
type gormSlogLogger struct {
	logger *slog.Logger
	level  logger.LogLevel
}

func newGormLogger() logger.Interface {
	return &gormSlogLogger{logger: observability.GlobalLogger.Logger, level: logger.Warn}
}

func (l *gormSlogLogger) LogMode(level logger.LogLevel) logger.Interface {
	out := *l
	out.level = level
	return &out
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error {
		sql, rows := fc()
		l.logger.ErrorContext(ctx, "query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", time.Since(begin)),
			slog.String("error", err.Error()),
		)
	}
}
