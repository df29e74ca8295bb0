package repository

import (
	"context"
	"time"

	"github.com/monocle-dev/expense-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "User")
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findBy(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findBy(ctx, "email = ?", email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findBy(ctx, "username = ?", username)
}

func (r *userRepository) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.findBy(ctx, "verification_token = ?", token)
}

func (r *userRepository) FindByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.findBy(ctx, "password_reset_token = ?", token)
}

func (r *userRepository) findBy(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

func (r *userRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("password_reset_expires IS NOT NULL AND password_reset_expires < ?", now.UTC()).
		Updates(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if result.Error != nil {
		return 0, translate(result.Error, "User")
	}
	return result.RowsAffected, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error, "User")
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return translate(result.Error, "User")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "User")
	}
	return nil
}
