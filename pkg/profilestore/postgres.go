package profilestore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the production Store implementation.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) UpsertBaseProfile(ctx context.Context, p BaseProfile) error {
	const query = `
		INSERT INTO profiles (user_id, email, account_type, first_name, last_name, profile_image, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			email         = EXCLUDED.email,
			account_type  = EXCLUDED.account_type,
			first_name    = EXCLUDED.first_name,
			last_name     = EXCLUDED.last_name,
			profile_image = EXCLUDED.profile_image,
			location      = EXCLUDED.location,
			updated_at    = now()`

	if _, err := s.pool.Exec(ctx, query,
		p.UserID, p.Email, p.AccountType, p.FirstName, p.LastName, p.ProfileImage, p.Location,
	); err != nil {
		return errors.Join(ErrPersistFailed, err)
	}
	return nil
}

func (s *PostgresStore) UpsertTeacherExtension(ctx context.Context, userID string, ext TeacherExtension) error {
	const query = `
		INSERT INTO teachers (user_id, bio, instruments)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			bio         = EXCLUDED.bio,
			instruments = EXCLUDED.instruments`

	if _, err := s.pool.Exec(ctx, query, userID, ext.Bio, ext.Instruments); err != nil {
		return errors.Join(ErrPersistFailed, err)
	}
	return nil
}

func (s *PostgresStore) UpsertParentExtension(ctx context.Context, userID string, ext ParentExtension) error {
	const query = `
		INSERT INTO parents (user_id, child_first_name, child_last_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			child_first_name = EXCLUDED.child_first_name,
			child_last_name  = EXCLUDED.child_last_name`

	if _, err := s.pool.Exec(ctx, query, userID, ext.ChildFirstName, ext.ChildLastName); err != nil {
		return errors.Join(ErrPersistFailed, err)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (Profile, error) {
	const query = `
		SELECT p.user_id, p.email, p.account_type, p.first_name, p.last_name,
		       p.profile_image, p.location, p.created_at, p.updated_at,
		       t.bio, t.instruments,
		       pa.child_first_name, pa.child_last_name
		FROM profiles p
		LEFT JOIN teachers t ON t.user_id = p.user_id
		LEFT JOIN parents pa ON pa.user_id = p.user_id
		WHERE p.user_id = $1`

	var (
		profile        Profile
		bio            *string
		instruments    []string
		childFirstName *string
		childLastName  *string
	)

	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.Email, &profile.AccountType,
		&profile.FirstName, &profile.LastName,
		&profile.ProfileImage, &profile.Location,
		&profile.CreatedAt, &profile.UpdatedAt,
		&bio, &instruments,
		&childFirstName, &childLastName,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, errors.Join(ErrPersistFailed, err)
	}

	// Only the extension matching the account type is attached, even if a
	// stale row from an earlier account-type exists.
	switch profile.AccountType {
	case "teacher":
		ext := &TeacherExtension{Instruments: instruments}
		if bio != nil {
			ext.Bio = *bio
		}
		profile.Teacher = ext
	case "parent":
		ext := &ParentExtension{}
		if childFirstName != nil {
			ext.ChildFirstName = *childFirstName
		}
		if childLastName != nil {
			ext.ChildLastName = *childLastName
		}
		profile.Parent = ext
	}

	return profile, nil
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, userID string) error {
	// Extension rows cascade via their foreign keys.
	if _, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return errors.Join(ErrPersistFailed, err)
	}
	return nil
}

func (s *PostgresStore) SearchTeachers(ctx context.Context, query string) ([]TeacherSummary, error) {
	const base = `
		SELECT p.user_id, p.first_name, p.last_name, p.location, p.profile_image,
		       COALESCE(t.bio, ''), COALESCE(t.instruments, '{}')
		FROM profiles p
		LEFT JOIN teachers t ON t.user_id = p.user_id
		WHERE p.account_type = 'teacher'`

	sql := base + ` ORDER BY p.first_name, p.user_id`
	args := []any{}
	if query != "" {
		sql = base + `
		AND (p.first_name ILIKE $1 OR p.last_name ILIKE $1 OR p.location ILIKE $1
		     OR EXISTS (SELECT 1 FROM unnest(t.instruments) AS i WHERE i ILIKE $1))
		ORDER BY p.first_name, p.user_id`
		args = append(args, "%"+query+"%")
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Join(ErrPersistFailed, err)
	}
	defer rows.Close()

	var out []TeacherSummary
	for rows.Next() {
		var t TeacherSummary
		if err := rows.Scan(
			&t.UserID, &t.FirstName, &t.LastName, &t.Location, &t.ProfileImage,
			&t.Bio, &t.Instruments,
		); err != nil {
			return nil, errors.Join(ErrPersistFailed, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrPersistFailed, err)
	}

	return out, nil
}

// Compile-time interface assertion
var _ Store = (*PostgresStore)(nil)
