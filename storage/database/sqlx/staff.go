package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/staff"
)

const (
	staffUsernameKey = "staff_user_username_key"
	staffEmailKey    = "staff_user_email_key"
)

type staffRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func newStaffRow(usr staff.User) staffRow {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	hash := usr.PasswordHash
	if hash == nil {
		hash = []byte{}
	}
	return staffRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     usr.IsActive,
		Roles:        pq.StringArray(roles),
		PasswordHash: hash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.TimeFromPtr(usr.LastLogin),
	}
}

func (r staffRow) toUser() staff.User {
	usr := staff.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive,
		Roles:        []string(r.Roles),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		ll := r.LastLogin.Time.UTC()
		usr.LastLogin = &ll
	}
	return usr
}

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *sqlx.DB) staff.Repository {
	return &staffRepository{db: db}
}

func trapStaffErr(err error) error {
	switch violatedConstraint(err) {
	case staffUsernameKey:
		return staff.ErrUsernameExists
	case staffEmailKey:
		return staff.ErrEmailExists
	}
	return err
}

func (repo *staffRepository) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...string) error {
	const q = `
SELECT username, email FROM staff_user
WHERE (username = $1 OR email = $2) AND NOT (id = ANY($3::uuid[]))`

	var rows []staffRow
	uname := null.NewString(username, username != "")
	mail := null.NewString(email, email != "")
	if err := repo.db.SelectContext(ctx, &rows, q, uname, mail, pq.StringArray(excludedIDs)); err != nil {
		return err
	}
	for _, row := range rows {
		if uname.Valid && row.Username == uname {
			return staff.ErrUsernameExists
		}
		if mail.Valid && row.Email == mail {
			return staff.ErrEmailExists
		}
	}
	return nil
}

func (repo *staffRepository) CreateUser(ctx context.Context, usr staff.User) (staff.User, error) {
	const q = `
INSERT INTO staff_user (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`

	usr.ID = uuid.New().String()
	row := newStaffRow(usr)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return staff.User{}, trapStaffErr(err)
	}
	return row.toUser(), nil
}

func (repo *staffRepository) QueryUsers(ctx context.Context, filter *staff.QueryFilter) ([]staff.User, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := len(args)
			where = append(where, fmt.Sprintf("(name ILIKE $%d OR username ILIKE $%d OR email ILIKE $%d)", n, n, n))
		}
		if filter.Role != "" {
			args = append(args, filter.Role+"%")
			where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE r LIKE $%d)", len(args)))
		}
		if filter.IsActive != nil {
			args = append(args, *filter.IsActive)
			where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
		}
	}

	q := `SELECT * FROM staff_user`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at"

	var rows []staffRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	users := make([]staff.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *staffRepository) GetUser(ctx context.Context, filter staff.GetFilter) (staff.User, error) {
	var (
		q   = `SELECT * FROM staff_user WHERE `
		arg string
	)
	switch {
	case filter.ID != "":
		q, arg = q+"id = $1", filter.ID
	case filter.Username != "":
		q, arg = q+"username = $1", filter.Username
	case filter.Email != "":
		q, arg = q+"email = $1", filter.Email
	case filter.UsernameOrEmail != "":
		q, arg = q+"(username = $1 OR email = $1)", filter.UsernameOrEmail
	default:
		return staff.User{}, staff.ErrNotFound
	}

	var row staffRow
	if err := repo.db.GetContext(ctx, &row, q+" LIMIT 1", arg); err != nil {
		return staff.User{}, trapNotFound(err, staff.ErrNotFound)
	}
	return row.toUser(), nil
}

func (repo *staffRepository) UpdateUser(ctx context.Context, usr staff.User) (staff.User, error) {
	const q = `
UPDATE staff_user SET
	name = :name, username = :username, email = :email, is_active = :is_active, roles = :roles,
	password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
WHERE id = :id`

	row := newStaffRow(usr)
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return staff.User{}, trapNotFound(trapStaffErr(err), staff.ErrNotFound)
	}
	if err = checkAffected(res, staff.ErrNotFound); err != nil {
		return staff.User{}, err
	}
	return row.toUser(), nil
}
