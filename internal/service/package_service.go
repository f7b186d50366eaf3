package service

import (
	"context"
	"encoding/json"
	"errors"
	"examroom_backend/internal/model"
	"examroom_backend/internal/repository"
	"examroom_backend/internal/util"
	"examroom_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	packageCacheKeyPrefix = "package:"
	packageCacheTTL       = 10 * time.Minute
)

type PackageService struct {
	PackageRepo *repository.PackageRepository
	UserRepo    *repository.UserRepository
	Redis       *redis.Client
}

func NewPackageService(packageRepo *repository.PackageRepository, userRepo *repository.UserRepository, rdb *redis.Client) *PackageService {
	return &PackageService{
		PackageRepo: packageRepo,
		UserRepo:    userRepo,
		Redis:       rdb,
	}
}

// defaultPackageInfo 零容量默认值，保证容量检查永远有确定答案
func defaultPackageInfo(id string) model.PackageInfo {
	return model.PackageInfo{
		ID:             id,
		Label:          "No label",
		MaxParticipant: 0,
		MaxQuestion:    0,
		Price:          0,
		FreeQuota:      0,
	}
}

// mergePackage 把已存套餐并入默认值，stored 为 nil 时原样返回默认
func mergePackage(info model.PackageInfo, stored *model.Package) model.PackageInfo {
	if stored == nil {
		return info
	}
	info.ID = stored.ID
	if stored.Label != "" {
		info.Label = stored.Label
	}
	info.MaxParticipant = stored.MaxParticipant
	info.MaxQuestion = stored.MaxQuestion
	info.Price = stored.Price
	info.FreeQuota = stored.FreeQuota
	return info
}

// ResolveByID 套餐缺失不报错，返回零容量默认
func (s *PackageService) ResolveByID(ctx context.Context, packageID string) model.PackageInfo {
	if packageID == "" {
		packageID = "trial"
	}

	info := defaultPackageInfo(packageID)

	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, packageCacheKeyPrefix+packageID).Result()
		if err == nil {
			var cached model.PackageInfo
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached
			}
		}
	}

	stored, err := s.PackageRepo.FindByID(packageID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("package lookup failed, falling back to default",
			zap.String("packageId", packageID), zap.Error(err))
	}
	if err == nil {
		info = mergePackage(info, stored)
	}

	if s.Redis != nil {
		if data, err := json.Marshal(info); err == nil {
			if err := s.Redis.Set(ctx, packageCacheKeyPrefix+packageID, data, packageCacheTTL).Err(); err != nil {
				logger.Log.Warn("package cache set failed", zap.Error(err))
			}
		}
	}

	return info
}

// ResolveForUser 解析用户当前套餐（始终以考试创建者为准的调用约定由调用方保证）
func (s *PackageService) ResolveForUser(ctx context.Context, userID uint) model.PackageInfo {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return defaultPackageInfo("trial")
	}
	return s.ResolveByID(ctx, user.PackageID)
}

func (s *PackageService) PriceList() ([]model.PackageInfo, error) {
	stored, err := s.PackageRepo.ListAll()
	if err != nil {
		return nil, err
	}
	infos := make([]model.PackageInfo, len(stored))
	for i := range stored {
		infos[i] = mergePackage(defaultPackageInfo(stored[i].ID), &stored[i])
	}
	return infos, nil
}

type GrantRequest struct {
	PackageID string `json:"packageId"`
	Quota     int    `json:"quota"`
}

// Grant 管理员给用户追加额度并可变更套餐
func (s *PackageService) Grant(userID uint, req GrantRequest) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}

	if req.PackageID != "" {
		if _, err := s.PackageRepo.FindByID(req.PackageID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrPackageNotFound
			}
			return err
		}
		user.PackageID = req.PackageID
	}
	user.Quota += req.Quota

	return s.UserRepo.Update(user)
}
