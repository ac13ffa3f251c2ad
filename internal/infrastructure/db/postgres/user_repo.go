package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/user-service/internal/domain"
)

const uniqueViolation = "23505"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func parseID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", domain.ErrInvalidID()
	}
	return u.String(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// likePattern escapes LIKE metacharacters so search text matches literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (domain.User, error) {
	ur, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return ur.toDomain(), nil
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1;`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id, err := parseID(id)
	if err != nil {
		return domain.User{}, err
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1;`, id)
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	var (
		where []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		n := len(args)
		where = append(where, fmt.Sprintf("(firstname ILIKE $%d OR lastname ILIKE $%d OR bio ILIKE $%d)", n, n, n))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	q := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at ASC;`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.ErrStoreUnavailable(err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		ur, err := scanUser(rows)
		if err != nil {
			return nil, domain.ErrStoreUnavailable(err)
		}
		out = append(out, ur.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrStoreUnavailable(err)
	}
	return out, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}

	const q = `
INSERT INTO users (id, firstname, lastname, email, bio, password_hash)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING ` + userColumns + `;
`
	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		uuid.NewString(), u.Firstname, u.Lastname, u.Email, u.Bio, u.PasswordHash,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return ur.toDomain(), nil
}

// UpdateByID applies upd in a single statement. With ExpectResetHash set the
// row must still carry that reset hash, which makes redemption single-use.
func (r *UserRepo) UpdateByID(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	id, err := parseID(id)
	if err != nil {
		return domain.User{}, err
	}
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args = []any{id}
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Firstname != nil {
		set("firstname", *upd.Firstname)
	}
	if upd.Lastname != nil {
		set("lastname", *upd.Lastname)
	}
	if upd.Bio != nil {
		set("bio", *upd.Bio)
	}
	if upd.PasswordHash != nil {
		set("password_hash", *upd.PasswordHash)
	}
	switch {
	case upd.SetReset != nil:
		set("reset_token_hash", upd.SetReset.TokenHash)
		set("reset_expires_at", upd.SetReset.ExpiresAt.UTC())
	case upd.ClearReset:
		sets = append(sets, "reset_token_hash = NULL", "reset_expires_at = NULL")
	}
	sets = append(sets, "updated_at = NOW()")

	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	if upd.ExpectResetHash != "" {
		args = append(args, upd.ExpectResetHash)
		q += fmt.Sprintf(" AND reset_token_hash = $%d", len(args))
	}
	q += ` RETURNING ` + userColumns + `;`

	ur, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrStoreUnavailable(err)
	}
	return ur.toDomain(), nil
}

func (r *UserRepo) DeleteByID(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		return domain.ErrStoreUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
