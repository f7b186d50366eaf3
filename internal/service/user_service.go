package service

import (
	"context"
	"errors"
	"examroom_backend/internal/model"
	"examroom_backend/internal/repository"
	"examroom_backend/internal/util"
	"io"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo   *repository.UserRepository
	PackageSvc *PackageService
	Storage    *StorageService
}

func NewUserService(userRepo *repository.UserRepository, packageSvc *PackageService, storage *StorageService) *UserService {
	return &UserService{UserRepo: userRepo, PackageSvc: packageSvc, Storage: storage}
}

// ProfileView 个人信息投影，套餐字段按需解析合并
type ProfileView struct {
	ID      uint              `json:"id"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Gender  int               `json:"gender"`
	Quota   int               `json:"quota"`
	Photo   string            `json:"photo,omitempty"`
	Package model.PackageInfo `json:"package"`
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	return &ProfileView{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Gender:  user.Gender,
		Quota:   user.Quota,
		Photo:   s.Storage.URLIfExists(ctx, ProfilePhotoPath(user.ID)),
		Package: s.PackageSvc.ResolveByID(ctx, user.PackageID),
	}, nil
}

type UpdateProfileRequest struct {
	Name   string `form:"name" json:"name" binding:"required,min=3,max=50"`
	Gender int    `form:"gender" json:"gender" binding:"oneof=0 1"`
}

// UpdateProfile 更新姓名与性别，头像单独走 UploadPhoto
func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) error {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}
	return s.UserRepo.UpdateProfile(userID, req.Name, req.Gender)
}

func (s *UserService) UploadPhoto(ctx context.Context, userID uint, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Storage.Upload(ctx, ProfilePhotoPath(userID), reader, size, contentType)
}
