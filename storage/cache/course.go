package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
)

// courseRepository caches GetLevel, which attendance and payments call on every write.
type courseRepository struct {
	course.Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger core.Logger
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

// NewCourseRepository wraps repo with a level cache. A nil client disables caching.
func NewCourseRepository(repo course.Repository, rdb *redis.Client, ttl time.Duration, logger core.Logger) course.Repository {
	if rdb == nil {
		return repo
	}
	return &courseRepository{Repository: repo, rdb: rdb, ttl: ttl, logger: logger}
}

func levelKey(id string) string {
	return fmt.Sprintf("course_level:%s", id)
}

func (repo *courseRepository) GetLevel(ctx context.Context, id string) (course.CourseLevel, error) {
	key := levelKey(id)
	data, err := repo.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var lvl course.CourseLevel
		if err = json.Unmarshal(data, &lvl); err == nil {
			return lvl, nil
		}
		repo.logger.Warn("invalid cached course level", map[string]interface{}{"key": key}, err)
	} else if err != redis.Nil {
		repo.logger.Error("redis GET failed", map[string]interface{}{"key": key}, err)
	}

	lvl, err := repo.Repository.GetLevel(ctx, id)
	if err != nil {
		return course.CourseLevel{}, err
	}
	if data, err = json.Marshal(lvl); err == nil {
		if err = repo.rdb.Set(ctx, key, data, repo.ttl).Err(); err != nil {
			repo.logger.Error("redis SET failed", map[string]interface{}{"key": key}, err)
		}
	}
	return lvl, nil
}

func (repo *courseRepository) forget(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, levelKey(id))
	}
	if err := repo.rdb.Del(ctx, keys...).Err(); err != nil {
		repo.logger.Error("redis DEL failed", map[string]interface{}{"keys": keys}, err)
	}
}

func (repo *courseRepository) levelIDs(ctx context.Context, courseID string) ([]string, error) {
	levels, err := repo.Repository.QueryLevels(ctx, courseID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(levels))
	for _, lvl := range levels {
		ids = append(ids, lvl.ID)
	}
	return ids, nil
}

// forgetCourse drops the cached levels of a course; they embed the course name.
func (repo *courseRepository) forgetCourse(ctx context.Context, courseID string) {
	ids, err := repo.levelIDs(ctx, courseID)
	if err != nil {
		repo.logger.Error("listing levels to evict", map[string]interface{}{"course_id": courseID}, err)
		return
	}
	repo.forget(ctx, ids...)
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs, err := repo.Repository.UpdateCourse(ctx, crs)
	if err == nil {
		repo.forgetCourse(ctx, crs.ID)
	}
	return crs, err
}

// DeleteCourse evicts the course's levels once the delete succeeded. The ids are
// read first since the delete cascades to the levels.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	ids, err := repo.levelIDs(ctx, id)
	if err != nil && !core.IsNotFound(err) {
		repo.logger.Error("listing levels to evict", map[string]interface{}{"course_id": id}, err)
	}
	if err = repo.Repository.DeleteCourse(ctx, id); err != nil {
		return err
	}
	repo.forget(ctx, ids...)
	return nil
}

func (repo *courseRepository) UpdateLevel(ctx context.Context, lvl course.CourseLevel) (course.CourseLevel, error) {
	lvl, err := repo.Repository.UpdateLevel(ctx, lvl)
	if err == nil {
		repo.forget(ctx, lvl.ID)
	}
	return lvl, err
}

func (repo *courseRepository) DeleteLevel(ctx context.Context, id string) error {
	err := repo.Repository.DeleteLevel(ctx, id)
	if err == nil {
		repo.forget(ctx, id)
	}
	return err
}
