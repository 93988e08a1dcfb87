package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

func isExcluded(id string, excludedIDs []string) bool {
	for _, exclID := range excludedIDs {
		if id == exclID {
			return true
		}
	}
	return false
}

func (repo *staffRepository) CheckUniqueness(_ context.Context, username, email string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.user {
		if isExcluded(usr.ID, excludedIDs) {
			continue
		}
		if username != "" && usr.Username == username {
			return staff.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return staff.ErrEmailExists
		}
	}
	return nil
}

func (repo *staffRepository) CreateUser(_ context.Context, usr staff.User) (staff.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.user[usr.ID] = &usr
	return usr, nil
}

func (repo *staffRepository) QueryUsers(_ context.Context, filter *staff.QueryFilter) ([]staff.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]staff.User, 0, len(repo.db.user))
	for _, usr := range repo.db.user {
		if filter != nil {
			if filter.Search != "" {
				kw := strings.ToLower(filter.Search)
				if !(strings.Contains(strings.ToLower(usr.Name), kw) ||
					strings.Contains(usr.Username, kw) ||
					strings.Contains(usr.Email, kw)) {
					continue
				}
			}
			if filter.Role != "" && !usr.RoleStartsWith(filter.Role) {
				continue
			}
			if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
				continue
			}
		}
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (repo *staffRepository) GetUser(_ context.Context, filter staff.GetFilter) (staff.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.user[filter.ID]; ok {
			return *usr, nil
		}
		return staff.User{}, staff.ErrNotFound
	}
	for _, usr := range repo.db.user {
		switch {
		case filter.Username != "" && usr.Username == filter.Username,
			filter.Email != "" && usr.Email == filter.Email,
			filter.UsernameOrEmail != "" && (usr.Username == filter.UsernameOrEmail || usr.Email == filter.UsernameOrEmail):
			return *usr, nil
		}
	}
	return staff.User{}, staff.ErrNotFound
}

func (repo *staffRepository) UpdateUser(_ context.Context, usr staff.User) (staff.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.user[usr.ID]; !ok {
		return staff.User{}, staff.ErrNotFound
	}
	repo.db.user[usr.ID] = &usr
	return usr, nil
}
